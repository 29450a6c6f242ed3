package search

import "strings"

// Seller is one upstream source.
type Seller string

const (
	SellerAmazon      Seller = "amazon"
	SellerFlipkart    Seller = "flipkart"
	SellerMDComputers Seller = "mdcomputers"
	SellerBing        Seller = "bing"
)

var sellerLabels = map[Seller]string{
	SellerAmazon:      "Amazon",
	SellerFlipkart:    "Flipkart",
	SellerMDComputers: "MD Computers",
	SellerBing:        "Bing Shopping",
}

// Label is the display name used when upstream does not name the site.
func (s Seller) Label() string {
	if l, ok := sellerLabels[s]; ok {
		return l
	}
	return string(s)
}

// StandardSellers are the marketplaces behind the standard scope.
func StandardSellers() []Seller {
	return []Seller{SellerAmazon, SellerFlipkart, SellerMDComputers}
}

// Scope selects which sellers a search covers.
type Scope string

const (
	ScopeStandard Scope = "standard"
	ScopeWeb      Scope = "web"
	ScopeAll      Scope = "all"
)

// Seller reports the seller of a single-seller scope.
func (s Scope) Seller() (Seller, bool) {
	switch Seller(s) {
	case SellerAmazon, SellerFlipkart, SellerMDComputers:
		return Seller(s), true
	}
	return "", false
}

// ParseScope accepts seller names, scope names and their aliases. An empty
// value means every seller.
func ParseScope(raw string) (Scope, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "", "all":
		return ScopeAll, nil
	case "standard", "amazon,flipkart,mdcomputers":
		return ScopeStandard, nil
	case "web", "bing", "web-shopping":
		return ScopeWeb, nil
	}
	if _, ok := Scope(v).Seller(); ok {
		return Scope(v), nil
	}
	return "", ErrUnknownScope
}
