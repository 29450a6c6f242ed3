package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Component is a reusable catalog record.
type Component struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Category Category `gorm:"size:32;index;not null" json:"category"`
	Name     string   `gorm:"size:255;not null" json:"name"`
	Brand    string   `gorm:"size:100;not null" json:"brand"`
	Model    string   `gorm:"size:255" json:"model,omitempty"`
	Price    float64  `gorm:"type:decimal(12,2);not null" json:"price"`
	Warranty string   `gorm:"size:100" json:"warranty,omitempty"`
	Link     string   `gorm:"size:1000" json:"link,omitempty"`
}

func (c *Component) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Category == "" {
		c.Category = CategoryOther
	}
	return nil
}

// ToLine copies the catalog record into a selection line. The copy does not
// follow later catalog edits.
func (c *Component) ToLine(quantity int) Line {
	l := Line{
		Category: c.Category,
		Name:     c.Name,
		Brand:    c.Brand,
		Price:    c.Price,
		Quantity: quantity,
		Warranty: c.Warranty,
		Link:     c.Link,
		Source:   LineSourceCatalog,
	}
	l.Sanitize()
	return l
}
