package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/pcquote/internal/models"
	"gorm.io/gorm"
)

// HistoryFilter matches customer name, phone or document number.
type HistoryFilter struct {
	Query string
	Type  string
}

// HistoryService keeps rendered documents. Stored totals are never recomputed.
type HistoryService struct{ DB *gorm.DB }

func NewHistoryService(db *gorm.DB) *HistoryService { return &HistoryService{DB: db} }

func orderedLines(db *gorm.DB) *gorm.DB { return db.Order("position asc") }

var errEmptyPayload = errors.New("document payload is empty")

// Append stores a document with its lines and payload. A number already in
// history fails with ErrDuplicateNumber.
func (s *HistoryService) Append(ctx context.Context, doc *models.Document) error {
	if len(doc.Payload) == 0 {
		return errEmptyPayload
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createDocument(tx, doc)
	})
}

// Replace stores doc in place of the document carrying the same number, if
// any. The replaced entry keeps its id and creation time.
func (s *HistoryService) Replace(ctx context.Context, doc *models.Document) error {
	if len(doc.Payload) == 0 {
		return errEmptyPayload
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Document
		err := tx.Select("id", "created_at").Where("number = ?", doc.Number).Take(&existing).Error
		switch {
		case err == nil:
			if err := tx.Where("document_id = ?", existing.ID).Delete(&models.DocumentLine{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Document{}, "id = ?", existing.ID).Error; err != nil {
				return err
			}
			doc.ID = existing.ID
			doc.CreatedAt = existing.CreatedAt
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return createDocument(tx, doc)
	})
}

func createDocument(tx *gorm.DB, doc *models.Document) error {
	if err := tx.Create(doc).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateNumber, doc.Number)
		}
		return err
	}
	return nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

// List returns documents newest first, without payloads.
func (s *HistoryService) List(ctx context.Context, f HistoryFilter) ([]models.Document, error) {
	q := s.DB.WithContext(ctx).Model(&models.Document{}).Omit("payload").Preload("Lines", orderedLines)
	if term := strings.ToLower(strings.TrimSpace(f.Query)); term != "" {
		like := "%" + escapeLike(term) + "%"
		q = q.Where(`lower(customer_name) LIKE ? ESCAPE '\' OR lower(customer_phone) LIKE ? ESCAPE '\' OR lower(number) LIKE ? ESCAPE '\'`, like, like, like)
	}
	if t := strings.TrimSpace(f.Type); t != "" {
		q = q.Where("type = ?", models.ParseDocumentType(t))
	}
	docs := []models.Document{}
	if err := q.Order("created_at desc").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Get returns one document without its payload.
func (s *HistoryService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.find(ctx, id, false)
}

// Payload returns one document including the rendered PDF.
func (s *HistoryService) Payload(ctx context.Context, id string) (*models.Document, error) {
	return s.find(ctx, id, true)
}

func (s *HistoryService) find(ctx context.Context, id string, withPayload bool) (*models.Document, error) {
	q := s.DB.WithContext(ctx).Preload("Lines", orderedLines)
	if !withPayload {
		q = q.Omit("payload")
	}
	var doc models.Document
	if err := q.First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Delete removes a document and its lines.
func (s *HistoryService) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&models.DocumentLine{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Document{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
