package db

import (
	"errors"
	"fmt"

	"github.com/diewo77/pcquote/internal/models"
	"gorm.io/gorm"
)

// SampleComponents is the catalog a fresh install starts with.
var SampleComponents = []models.Component{
	// CPUs
	{Category: models.CategoryCPU, Name: "AMD Ryzen 5 5600X", Brand: "AMD", Model: "5600X", Price: 15999, Warranty: "3 years"},
	{Category: models.CategoryCPU, Name: "Intel Core i5-12400F", Brand: "Intel", Model: "i5-12400F", Price: 14999, Warranty: "3 years"},
	{Category: models.CategoryCPU, Name: "AMD Ryzen 7 5700X", Brand: "AMD", Model: "5700X", Price: 22999, Warranty: "3 years"},
	{Category: models.CategoryCPU, Name: "Intel Core i7-12700F", Brand: "Intel", Model: "i7-12700F", Price: 28999, Warranty: "3 years"},
	// GPUs
	{Category: models.CategoryGPU, Name: "NVIDIA RTX 4060", Brand: "NVIDIA", Model: "RTX 4060", Price: 32999, Warranty: "3 years"},
	{Category: models.CategoryGPU, Name: "AMD RX 6600 XT", Brand: "AMD", Model: "RX 6600 XT", Price: 28999, Warranty: "2 years"},
	{Category: models.CategoryGPU, Name: "NVIDIA RTX 4070", Brand: "NVIDIA", Model: "RTX 4070", Price: 54999, Warranty: "3 years"},
	{Category: models.CategoryGPU, Name: "AMD RX 7700 XT", Brand: "AMD", Model: "RX 7700 XT", Price: 42999, Warranty: "2 years"},
	// RAM
	{Category: models.CategoryRAM, Name: "Corsair Vengeance LPX 16GB DDR4", Brand: "Corsair", Model: "LPX 16GB DDR4", Price: 4999, Warranty: "Lifetime"},
	{Category: models.CategoryRAM, Name: "G.Skill Ripjaws V 32GB DDR4", Brand: "G.Skill", Model: "Ripjaws V 32GB DDR4", Price: 8999, Warranty: "Lifetime"},
	{Category: models.CategoryRAM, Name: "Kingston Fury Beast 16GB DDR5", Brand: "Kingston", Model: "Fury Beast 16GB DDR5", Price: 7999, Warranty: "Lifetime"},
	// Motherboards
	{Category: models.CategoryMotherboard, Name: "MSI B450 TOMAHAWK MAX", Brand: "MSI", Model: "B450 TOMAHAWK MAX", Price: 8999, Warranty: "3 years"},
	{Category: models.CategoryMotherboard, Name: "ASUS TUF Gaming B550M-Plus", Brand: "ASUS", Model: "TUF Gaming B550M-Plus", Price: 12999, Warranty: "3 years"},
	{Category: models.CategoryMotherboard, Name: "Gigabyte Z690 AORUS Elite", Brand: "Gigabyte", Model: "Z690 AORUS Elite", Price: 18999, Warranty: "3 years"},
	// Storage
	{Category: models.CategoryStorage, Name: "Samsung 980 1TB NVMe SSD", Brand: "Samsung", Model: "980 1TB NVMe", Price: 7999, Warranty: "5 years"},
	{Category: models.CategoryStorage, Name: "WD Black SN770 500GB NVMe", Brand: "Western Digital", Model: "Black SN770 500GB", Price: 4999, Warranty: "5 years"},
	{Category: models.CategoryStorage, Name: "Seagate Barracuda 2TB HDD", Brand: "Seagate", Model: "Barracuda 2TB", Price: 4599, Warranty: "2 years"},
	// PSU
	{Category: models.CategoryPSU, Name: "Corsair CV650 650W 80+ Bronze", Brand: "Corsair", Model: "CV650 650W", Price: 5999, Warranty: "3 years"},
	{Category: models.CategoryPSU, Name: "Seasonic Focus GX-750 750W 80+ Gold", Brand: "Seasonic", Model: "Focus GX-750", Price: 9999, Warranty: "10 years"},
	{Category: models.CategoryPSU, Name: "Cooler Master MWE Gold 650W", Brand: "Cooler Master", Model: "MWE Gold 650W", Price: 7999, Warranty: "5 years"},
	// Cases
	{Category: models.CategoryCase, Name: "NZXT H510 Mid Tower", Brand: "NZXT", Model: "H510", Price: 6999, Warranty: "2 years"},
	{Category: models.CategoryCase, Name: "Corsair 4000D Airflow", Brand: "Corsair", Model: "4000D Airflow", Price: 8999, Warranty: "2 years"},
	{Category: models.CategoryCase, Name: "Fractal Design Core 1000", Brand: "Fractal Design", Model: "Core 1000", Price: 4999, Warranty: "2 years"},
	// Cooling
	{Category: models.CategoryCooling, Name: "Cooler Master Hyper 212", Brand: "Cooler Master", Model: "Hyper 212", Price: 2999, Warranty: "2 years"},
	{Category: models.CategoryCooling, Name: "Noctua NH-D15", Brand: "Noctua", Model: "NH-D15", Price: 8999, Warranty: "6 years"},
	{Category: models.CategoryCooling, Name: "Corsair H100i RGB Platinum", Brand: "Corsair", Model: "H100i RGB Platinum", Price: 12999, Warranty: "5 years"},
}

// Seed inserts the default company row and, on an empty catalog, the sample
// components. It is safe to run repeatedly.
func Seed(conn *gorm.DB) error {
	var company models.CompanyInfo
	err := conn.First(&company, models.CompanyInfoID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		company = models.DefaultCompanyInfo()
		if err := conn.Create(&company).Error; err != nil {
			return fmt.Errorf("seed company: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("load company: %w", err)
	}

	var count int64
	if err := conn.Model(&models.Component{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count components: %w", err)
	}
	if count > 0 {
		return nil
	}
	components := make([]models.Component, len(SampleComponents))
	copy(components, SampleComponents)
	if err := conn.Create(&components).Error; err != nil {
		return fmt.Errorf("seed components: %w", err)
	}
	return nil
}
