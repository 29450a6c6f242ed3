package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/diewo77/pcquote/internal/models"
	"github.com/diewo77/pcquote/internal/pricing"
)

// DefaultWarranty is assumed when a seller does not state one.
const DefaultWarranty = "1 year"

// RawProduct is a hit as the scraping service returns it. Field names and
// price types vary between scrapers.
type RawProduct struct {
	Title    string `json:"title"`
	Name     string `json:"name"`
	Price    any    `json:"price"`
	Link     string `json:"link"`
	URL      string `json:"url"`
	Site     string `json:"site"`
	Seller   string `json:"seller"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
	Warranty string `json:"warranty"`
	Image    string `json:"image"`
}

// Normalize fills in everything a quotation line needs.
func Normalize(r RawProduct, seller Seller) Product {
	title := firstNonEmpty(r.Title, r.Name)
	if title == "" {
		title = "Unknown Product"
	}
	price, _ := pricing.PriceOf(r.Price)

	category, ok := models.ParseCategory(r.Category)
	if !ok || category == models.CategoryOther {
		category = DetectCategory(title)
	}
	brand := strings.TrimSpace(r.Brand)
	if brand == "" {
		brand = ExtractBrand(title)
	}
	return Product{
		Title:    title,
		Price:    price,
		Link:     firstNonEmpty(r.Link, r.URL, "#"),
		Site:     firstNonEmpty(r.Site, seller.Label()),
		Seller:   strings.TrimSpace(r.Seller),
		Category: category,
		Brand:    brand,
		Warranty: firstNonEmpty(r.Warranty, DefaultWarranty),
		Image:    strings.TrimSpace(r.Image),
	}
}

type categoryRule struct {
	category models.Category
	pattern  *regexp.Regexp
}

// Checked in order, the first match wins.
var categoryRules = []categoryRule{
	{models.CategoryCPU, regexp.MustCompile(`(?i)\b(ryzen|core\si[3579]|xeon|pentium|celeron)\b`)},
	{models.CategoryGPU, regexp.MustCompile(`(?i)\b(rtx|gtx|radeon|arc|gpu|graphics\scard)\b`)},
	{models.CategoryRAM, regexp.MustCompile(`(?i)\b(ddr[45]?|ram|memory)\b`)},
	{models.CategoryMotherboard, regexp.MustCompile(`(?i)\b([bzhx][0-9]{3}|motherboard)\b`)},
	{models.CategoryStorage, regexp.MustCompile(`(?i)\b(ssd|nvme|hdd|hard\sdisk|m\.2)\b`)},
	{models.CategoryPSU, regexp.MustCompile(`(?i)\b(psu|power\ssupply|smps)\b`)},
	{models.CategoryCase, regexp.MustCompile(`(?i)\b(case|chassis|cabinet)\b`)},
	{models.CategoryCooling, regexp.MustCompile(`(?i)\b(cooler|aio|fan|heatsink)\b`)},
	{models.CategoryMonitor, regexp.MustCompile(`(?i)\b(monitor|display|screen)\b`)},
	{models.CategoryAccessories, regexp.MustCompile(`(?i)\b(keyboard|mouse|headset)\b`)},
}

// DetectCategory infers a category from a product title.
func DetectCategory(title string) models.Category {
	for _, r := range categoryRules {
		if r.pattern.MatchString(title) {
			return r.category
		}
	}
	return models.CategoryOther
}

// Brands recognized in titles. Sub-brands live in brandAliases.
var Brands = []string{
	"AMD", "Intel", "NVIDIA", "ASUS", "MSI", "Gigabyte",
	"Corsair", "Kingston", "Samsung", "WD", "Seagate",
	"Crucial", "Thermaltake", "EVGA", "Zotac", "PNY",
	"HyperX", "ADATA", "Toshiba", "HP", "Dell", "Lenovo",
	"Cooler Master", "Noctua", "be quiet!", "Fractal Design",
	"NZXT", "Lian Li", "Phanteks", "Silverstone", "Antec",
	"ASRock", "Biostar", "Sapphire", "XFX", "PowerColor",
	"Inno3D", "Galax", "G.Skill", "Team Group", "Patriot",
	"Seasonic", "Super Flower", "FSP",
	"Deepcool", "ARCTIC", "EKWB", "Logitech", "Razer",
	"SteelSeries", "BenQ", "Acer", "LG", "AOC", "ViewSonic",
	"Ducky", "Varmilo", "Keychron",
}

type brandAlias struct {
	pattern string
	brand   string
}

var brandAliases = []brandAlias{
	{"republic of gamers", "ASUS ROG"},
	{"rog", "ASUS ROG"},
	{"tuf gaming", "ASUS TUF Gaming"},
	{"alienware", "Dell Alienware"},
	{"predator", "Acer Predator"},
	{"omen", "HP OMEN"},
}

type brandMatcher struct {
	brand   string
	pattern *regexp.Regexp
}

var brandMatchers = buildBrandMatchers()

func buildBrandMatchers() []brandMatcher {
	var multi, single []string
	for _, b := range Brands {
		if strings.Contains(b, " ") {
			multi = append(multi, b)
		} else {
			single = append(single, b)
		}
	}
	sort.SliceStable(multi, func(i, j int) bool { return len(multi[i]) > len(multi[j]) })

	var out []brandMatcher
	for _, b := range multi {
		out = append(out, brandMatcher{brand: b, pattern: brandPattern(b)})
	}
	for _, a := range brandAliases {
		out = append(out, brandMatcher{brand: a.brand, pattern: brandPattern(a.pattern)})
	}
	for _, b := range single {
		out = append(out, brandMatcher{brand: b, pattern: brandPattern(b)})
	}
	return out
}

// brandPattern matches name as a whole token; '-' and spaces inside the name
// are optional separators.
func brandPattern(name string) *regexp.Regexp {
	var b strings.Builder
	for _, r := range name {
		if r == '-' || r == ' ' {
			b.WriteString(`[-\s]?`)
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	return regexp.MustCompile(`(?i)(?:^|[^\pL\pN])` + b.String() + `(?:$|[^\pL\pN])`)
}

// ExtractBrand infers the brand from a product title. Multi-word brands are
// tried longest first, then sub-brand aliases, then single-word brands.
func ExtractBrand(title string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}
	for _, m := range brandMatchers {
		if m.pattern.MatchString(title) {
			return m.brand
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
