package pricing

import (
	"strings"

	"github.com/diewo77/pcquote/internal/models"
)

// Missing requirement codes reported by Eligibility.
const (
	MissingComponents    = "components"
	MissingCustomerName  = "customer_name"
	MissingCustomerPhone = "customer_phone"
)

// Eligibility lists what prevents a quotation from being rendered. An empty
// result means it can be rendered.
func Eligibility(lines []models.Line, customer models.Customer) []string {
	var missing []string
	if len(lines) == 0 {
		missing = append(missing, MissingComponents)
	}
	if isBlank(customer.Name) {
		missing = append(missing, MissingCustomerName)
	}
	if isBlank(customer.Phone) {
		missing = append(missing, MissingCustomerPhone)
	}
	return missing
}

// Eligible is Eligibility reduced to a bool.
func Eligible(lines []models.Line, customer models.Customer) bool {
	return len(Eligibility(lines, customer)) == 0
}

// ValidRate reports whether a discount or GST rate is a percentage in [0, 100].
func ValidRate(rate float64) bool {
	return rate >= 0 && rate <= 100
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
