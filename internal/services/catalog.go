package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/pcquote/internal/models"
	"github.com/diewo77/pcquote/internal/pricing"
	"github.com/diewo77/pcquote/validation"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

func init() {
	validation.RegisterRule("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
}

// ComponentInput is the writable part of a catalog entry.
type ComponentInput struct {
	Category string  `json:"category" validate:"omitempty,category"`
	Name     string  `json:"name" validate:"required,max=255"`
	Brand    string  `json:"brand" validate:"required,max=100"`
	Model    string  `json:"model" validate:"max=255"`
	Price    float64 `json:"price" validate:"gt=0"`
	Warranty string  `json:"warranty" validate:"max=100"`
	Link     string  `json:"link" validate:"omitempty,url"`
}

func (in *ComponentInput) normalize() {
	in.Category = strings.TrimSpace(in.Category)
	if c, ok := models.ParseCategory(in.Category); ok {
		in.Category = string(c)
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Model = strings.TrimSpace(in.Model)
	in.Warranty = strings.TrimSpace(in.Warranty)
	in.Link = strings.TrimSpace(in.Link)
}

func (in ComponentInput) apply(c *models.Component) {
	c.Category = models.CategoryOrOther(in.Category)
	c.Name = in.Name
	c.Brand = in.Brand
	c.Model = in.Model
	c.Price = in.Price
	c.Warranty = in.Warranty
	c.Link = in.Link
}

// CatalogFilter narrows List. Query matches name, brand, model and category.
type CatalogFilter struct {
	Query    string
	Category string
	Page     int
	Limit    int
}

// Page is one page of a listing.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// ImportResult reports what an import kept and dropped.
type ImportResult struct {
	Imported int                `json:"imported"`
	Skipped  int                `json:"skipped"`
	Items    []models.Component `json:"items"`
}

type CatalogService struct{ DB *gorm.DB }

func NewCatalogService(db *gorm.DB) *CatalogService { return &CatalogService{DB: db} }

func (s *CatalogService) List(ctx context.Context, f CatalogFilter) (*Page[models.Component], error) {
	q := s.DB.WithContext(ctx).Model(&models.Component{})
	if cat := strings.TrimSpace(f.Category); cat != "" {
		c, ok := models.ParseCategory(cat)
		if !ok {
			return nil, validation.Violations{"category": "invalid_category"}
		}
		q = q.Where("category = ?", c)
	}
	if term := strings.ToLower(strings.TrimSpace(f.Query)); term != "" {
		like := "%" + escapeLike(term) + "%"
		q = q.Where(`lower(name) LIKE ? ESCAPE '\' OR lower(brand) LIKE ? ESCAPE '\' OR lower(model) LIKE ? ESCAPE '\' OR lower(category) LIKE ? ESCAPE '\'`, like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	items := []models.Component{}
	if err := q.Order("category asc, name asc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return &Page[models.Component]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// All returns the whole catalog, used by exports.
func (s *CatalogService) All(ctx context.Context) ([]models.Component, error) {
	items := []models.Component{}
	err := s.DB.WithContext(ctx).Order("category asc, name asc").Find(&items).Error
	return items, err
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.Component, error) {
	var c models.Component
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *CatalogService) Create(ctx context.Context, in ComponentInput) (*models.Component, error) {
	if err := validateComponent(&in); err != nil {
		return nil, err
	}
	var c models.Component
	in.apply(&c)
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, in ComponentInput) (*models.Component, error) {
	if err := validateComponent(&in); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(c)
	if err := s.DB.WithContext(ctx).Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Delete(&models.Component{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Import inserts the acceptable records in one transaction. A record is
// dropped when name, brand, category or a positive price is missing; an
// unknown category becomes Other.
func (s *CatalogService) Import(ctx context.Context, records []map[string]any) (*ImportResult, error) {
	res := &ImportResult{Items: []models.Component{}}
	for _, rec := range records {
		c, ok := componentFromRecord(rec)
		if !ok {
			res.Skipped++
			continue
		}
		res.Items = append(res.Items, c)
	}
	if len(res.Items) == 0 {
		return res, nil
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&res.Items).Error
	})
	if err != nil {
		return nil, err
	}
	res.Imported = len(res.Items)
	return res, nil
}

func componentFromRecord(rec map[string]any) (models.Component, bool) {
	name := stringField(rec, "name")
	brand := stringField(rec, "brand")
	category := stringField(rec, "category")
	if name == "" || brand == "" || category == "" {
		return models.Component{}, false
	}
	price, ok := pricing.PriceOf(field(rec, "price"))
	if !ok || price <= 0 {
		return models.Component{}, false
	}
	in := ComponentInput{
		Category: category,
		Name:     name,
		Brand:    brand,
		Model:    stringField(rec, "model"),
		Price:    price,
		Warranty: stringField(rec, "warranty"),
		Link:     stringField(rec, "link"),
	}
	in.normalize()
	var c models.Component
	in.apply(&c)
	return c, true
}

// field looks a key up case-insensitively, spreadsheets rarely agree on case.
func field(rec map[string]any, key string) any {
	if v, ok := rec[key]; ok {
		return v
	}
	for k, v := range rec {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return v
		}
	}
	return nil
}

func stringField(rec map[string]any, key string) string {
	v, _ := field(rec, key).(string)
	return strings.TrimSpace(v)
}

func validateComponent(in *ComponentInput) error {
	in.normalize()
	v := validation.Violations{}
	if err := validation.Struct(in, v); err != nil {
		return err
	}
	if !v.Empty() {
		return v
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
