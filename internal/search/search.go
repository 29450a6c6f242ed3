// Package search proxies product lookups to the scraping service and
// normalizes what comes back into quotation-ready products.
package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/diewo77/pcquote/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	MinQueryLength = 2
	DefaultLimit   = 20
	MaxLimit       = 50
)

var (
	ErrQueryTooShort = errors.New("query_too_short")
	ErrNoResults     = errors.New("no_results")
	ErrUnknownScope  = errors.New("invalid_seller")
	ErrUnavailable   = errors.New("search_unavailable")
)

// Product is a normalized search hit.
type Product struct {
	Title    string          `json:"title"`
	Price    float64         `json:"price"`
	Link     string          `json:"link"`
	Site     string          `json:"site"`
	Seller   string          `json:"seller,omitempty"`
	Category models.Category `json:"category"`
	Brand    string          `json:"brand"`
	Warranty string          `json:"warranty"`
	Image    string          `json:"image,omitempty"`
}

// Line turns the product into a quotation line.
func (p Product) Line() models.Line {
	l := models.Line{
		Category: p.Category,
		Name:     p.Title,
		Brand:    p.Brand,
		Price:    p.Price,
		Quantity: 1,
		Warranty: p.Warranty,
		Source:   models.LineSourceSearch,
	}
	if p.Link != "#" {
		l.Link = p.Link
	}
	l.Sanitize()
	return l
}

// Request is one search call.
type Request struct {
	Query string
	Scope Scope
	Limit int
}

// Result is what a search returns to clients.
type Result struct {
	Query   string    `json:"query"`
	Scope   Scope     `json:"seller"`
	Count   int       `json:"count"`
	Cached  bool      `json:"cached"`
	Results []Product `json:"results"`
}

// Upstream fetches raw hits for one seller.
type Upstream interface {
	Search(ctx context.Context, seller Seller, query string, limit int) ([]RawProduct, error)
}

type Service struct {
	upstream Upstream
	cache    Cache
	ttl      time.Duration
	log      logrus.FieldLogger
}

func NewService(upstream Upstream, cache Cache, ttl time.Duration, log logrus.FieldLogger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{upstream: upstream, cache: cache, ttl: ttl, log: log}
}

func (s *Service) Search(ctx context.Context, req Request) (*Result, error) {
	query := strings.TrimSpace(req.Query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, ErrQueryTooShort
	}
	if req.Scope == "" {
		req.Scope = ScopeAll
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	key := cacheKey(req.Scope, query, limit)
	if hit, ok := s.cache.Get(ctx, key); ok {
		return &Result{Query: query, Scope: req.Scope, Count: len(hit), Cached: true, Results: hit}, nil
	}

	products, err := s.fetch(ctx, req.Scope, query, limit)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNoResults
	}
	s.cache.Set(ctx, key, products, s.ttl)
	return &Result{Query: query, Scope: req.Scope, Count: len(products), Results: products}, nil
}

func (s *Service) fetch(ctx context.Context, scope Scope, query string, limit int) ([]Product, error) {
	switch scope {
	case ScopeStandard:
		return s.standard(ctx, query, limit)
	case ScopeWeb:
		return s.seller(ctx, SellerBing, query, limit)
	case ScopeAll:
		return s.combined(ctx, query, limit)
	}
	if seller, ok := scope.Seller(); ok {
		return s.seller(ctx, seller, query, limit)
	}
	return nil, ErrUnknownScope
}

func (s *Service) seller(ctx context.Context, seller Seller, query string, limit int) ([]Product, error) {
	raw, err := s.upstream.Search(ctx, seller, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, seller, err)
	}
	if len(raw) > limit {
		raw = raw[:limit]
	}
	out := make([]Product, 0, len(raw))
	for _, r := range raw {
		out = append(out, Normalize(r, seller))
	}
	return out, nil
}

// standard queries every marketplace concurrently. A failing seller is
// skipped; the call fails only when all of them do.
func (s *Service) standard(ctx context.Context, query string, limit int) ([]Product, error) {
	sellers := StandardSellers()
	results := make([][]Product, len(sellers))
	var (
		mu       sync.Mutex
		failures []error
	)
	var g errgroup.Group
	for i, seller := range sellers {
		g.Go(func() error {
			products, err := s.seller(ctx, seller, query, limit)
			if err != nil {
				s.log.WithError(err).WithField("seller", seller).Warn("seller search failed")
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
				return nil
			}
			results[i] = products
			return nil
		})
	}
	_ = g.Wait()
	if len(failures) == len(sellers) {
		return nil, errors.Join(failures...)
	}
	var out []Product
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// combined runs the marketplaces and web shopping side by side. Web shopping
// is best effort.
func (s *Service) combined(ctx context.Context, query string, limit int) ([]Product, error) {
	var standard, web []Product
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		standard, err = s.standard(gctx, query, limit)
		return err
	})
	g.Go(func() error {
		var err error
		web, err = s.seller(gctx, SellerBing, query, limit)
		if err != nil {
			s.log.WithError(err).Warn("web shopping search failed")
			web = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return append(standard, web...), nil
}

func cacheKey(scope Scope, query string, limit int) string {
	return "search:" + string(scope) + ":" + strconv.Itoa(limit) + ":" + strings.ToLower(query)
}
