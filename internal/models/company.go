package models

import (
	"time"
)

// CompanyInfoID is the primary key of the single company row.
const CompanyInfoID = 1

// CompanyInfo is the seller identity printed on every document.
type CompanyInfo struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`

	Name    string `gorm:"size:255;not null" json:"name"`
	Address string `gorm:"size:500" json:"address"`
	Phone   string `gorm:"size:50" json:"phone"`
	Email   string `gorm:"size:255" json:"email"`
	GSTIN   string `gorm:"column:gstin;size:20" json:"gstin"`
	Website string `gorm:"size:255" json:"website,omitempty"`

	// Logo is an image as a data URI or plain base64.
	Logo string `gorm:"type:text" json:"logo,omitempty"`
}

func (CompanyInfo) TableName() string { return "company_info" }

// DefaultCompanyInfo is returned until the operator saves their own details.
func DefaultCompanyInfo() CompanyInfo {
	return CompanyInfo{
		ID:      CompanyInfoID,
		Name:    "IT SERVICE WORLD",
		Address: "Siliguri, West Bengal, India",
		Phone:   "+91 XXXXX XXXXX",
		Email:   "info@itserviceworld.com",
		GSTIN:   "XXXXXXXXXXXXXXX",
		Website: "www.itserviceworld.com",
	}
}
