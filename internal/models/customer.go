package models

import (
	"strings"

	"github.com/diewo77/pcquote/validation"
)

// Customer is a free-form buyer identity copied into each document.
type Customer struct {
	Name    string `gorm:"size:255" json:"name"`
	Phone   string `gorm:"size:50" json:"phone"`
	Email   string `gorm:"size:255" json:"email"`
	Address string `gorm:"size:500" json:"address,omitempty"`
}

// DisplayPhone formats the phone number when it parses, otherwise returns it verbatim.
func (c Customer) DisplayPhone() string {
	p, _ := validation.NormalizePhone(c.Phone)
	return p
}

// Complete reports whether the customer carries what a document needs.
func (c Customer) Complete() bool {
	return strings.TrimSpace(c.Name) != "" && strings.TrimSpace(c.Phone) != ""
}
