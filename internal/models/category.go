package models

import "strings"

// Category is the closed set of component kinds.
type Category string

const (
	CategoryCPU         Category = "CPU"
	CategoryGPU         Category = "GPU"
	CategoryRAM         Category = "RAM"
	CategoryMotherboard Category = "Motherboard"
	CategoryStorage     Category = "Storage"
	CategoryPSU         Category = "PSU"
	CategoryCase        Category = "Case"
	CategoryCooling     Category = "Cooling"
	CategoryMonitor     Category = "Monitor"
	CategoryAccessories Category = "Accessories"
	CategoryOther       Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryCPU,
	CategoryGPU,
	CategoryRAM,
	CategoryMotherboard,
	CategoryStorage,
	CategoryPSU,
	CategoryCase,
	CategoryCooling,
	CategoryMonitor,
	CategoryAccessories,
	CategoryOther,
}

// ParseCategory matches s case-insensitively against the known categories.
// ok is false when s is not a known category; the returned value is then Other.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return CategoryOther, false
}

// CategoryOrOther is ParseCategory without the ok flag.
func CategoryOrOther(s string) Category {
	c, _ := ParseCategory(s)
	return c
}

func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}

func (c Category) String() string { return string(c) }
