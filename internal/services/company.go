package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/pcquote/internal/models"
	"github.com/diewo77/pcquote/validation"
	"gorm.io/gorm"
)

// CompanyInput replaces the seller identity as a whole.
type CompanyInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address" validate:"max=500"`
	Phone   string `json:"phone" validate:"max=50"`
	Email   string `json:"email" validate:"omitempty,email"`
	GSTIN   string `json:"gstin" validate:"required,max=20"`
	Website string `json:"website" validate:"max=255"`
	Logo    string `json:"logo"`
}

type CompanyService struct{ DB *gorm.DB }

func NewCompanyService(db *gorm.DB) *CompanyService { return &CompanyService{DB: db} }

// Get returns the stored company, or the defaults when nothing was saved yet.
func (s *CompanyService) Get(ctx context.Context) (*models.CompanyInfo, error) {
	var info models.CompanyInfo
	err := s.DB.WithContext(ctx).First(&info, models.CompanyInfoID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		def := models.DefaultCompanyInfo()
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Save overwrites the single company row, creating it on first use.
func (s *CompanyService) Save(ctx context.Context, in CompanyInput) (*models.CompanyInfo, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.GSTIN = strings.ToUpper(strings.TrimSpace(in.GSTIN))
	in.Email = strings.TrimSpace(in.Email)
	in.Logo = strings.TrimSpace(in.Logo)
	v := validation.Violations{}
	if err := validation.Struct(in, v); err != nil {
		return nil, err
	}
	if !v.Empty() {
		return nil, v
	}

	var info models.CompanyInfo
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found := true
		if err := tx.First(&info, models.CompanyInfoID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			found = false
			info = models.CompanyInfo{ID: models.CompanyInfoID}
		}
		info.Name = in.Name
		info.Address = strings.TrimSpace(in.Address)
		info.Phone = strings.TrimSpace(in.Phone)
		info.Email = in.Email
		info.GSTIN = in.GSTIN
		info.Website = strings.TrimSpace(in.Website)
		info.Logo = in.Logo
		if found {
			return tx.Save(&info).Error
		}
		return tx.Create(&info).Error
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}
