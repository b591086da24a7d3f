package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

var (
	// ErrNotFound indicates no record matched the lookup.
	ErrNotFound = errors.New("catalog: record not found")

	errMissingCatalogDatabase = errors.New("catalog: database handle is required")
	errMissingCatalogID       = errors.New("catalog: id provider is required")
)

// IDProvider abstracts record identifier generation.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the dependencies for the catalog service.
type ServiceConfig struct {
	Database   *gorm.DB
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service owns CRUD over property listings, testimonials, and FAQs.
type Service struct {
	db         *gorm.DB
	idProvider IDProvider
	logger     *zap.Logger
}

// NewService constructs the catalog service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingCatalogDatabase
	}
	if cfg.IDProvider == nil {
		return nil, errMissingCatalogID
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, idProvider: cfg.IDProvider, logger: logger}, nil
}

// Page normalizes offset pagination input.
type Page struct {
	Number int
	Size   int
}

func (p Page) normalized() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Size
}

// ListProperties returns one page of listings, newest first, and the total count.
func (s *Service) ListProperties(ctx context.Context, page Page) ([]Property, int64, error) {
	page = page.normalized()

	var total int64
	if err := s.db.WithContext(ctx).Model(&Property{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var properties []Property
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(page.offset()).
		Limit(page.Size).
		Find(&properties).Error
	if err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

// GetProperty returns a single listing.
func (s *Service) GetProperty(ctx context.Context, id string) (Property, error) {
	var property Property
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&property).Error; err != nil {
		return Property{}, mapCatalogError(err)
	}
	return property, nil
}

// CreateProperty inserts a listing, assigning a fresh identifier.
func (s *Service) CreateProperty(ctx context.Context, property Property) (Property, error) {
	id, err := s.idProvider.NewID()
	if err != nil {
		return Property{}, err
	}
	property.ID = id
	if err := s.db.WithContext(ctx).Create(&property).Error; err != nil {
		return Property{}, err
	}
	return property, nil
}

// UpdateProperty applies the given column values and returns the updated listing.
func (s *Service) UpdateProperty(ctx context.Context, id string, fields map[string]interface{}) (Property, error) {
	result := s.db.WithContext(ctx).Model(&Property{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return Property{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Property{}, ErrNotFound
	}
	return s.GetProperty(ctx, id)
}

// DeleteProperty removes a listing.
func (s *Service) DeleteProperty(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Property{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTestimonials returns all testimonials, featured first, newest first.
func (s *Service) ListTestimonials(ctx context.Context) ([]Testimonial, error) {
	var testimonials []Testimonial
	err := s.db.WithContext(ctx).
		Order("featured DESC").
		Order("created_at DESC").
		Find(&testimonials).Error
	if err != nil {
		return nil, err
	}
	return testimonials, nil
}

// CreateTestimonial inserts a testimonial, assigning a fresh identifier.
func (s *Service) CreateTestimonial(ctx context.Context, testimonial Testimonial) (Testimonial, error) {
	id, err := s.idProvider.NewID()
	if err != nil {
		return Testimonial{}, err
	}
	testimonial.ID = id
	if err := s.db.WithContext(ctx).Create(&testimonial).Error; err != nil {
		return Testimonial{}, err
	}
	return testimonial, nil
}

// DeleteTestimonial removes a testimonial.
func (s *Service) DeleteTestimonial(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Testimonial{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFAQs returns all FAQs by ascending display order.
func (s *Service) ListFAQs(ctx context.Context) ([]FAQ, error) {
	var faqs []FAQ
	err := s.db.WithContext(ctx).
		Order("order_index ASC").
		Order("created_at ASC").
		Find(&faqs).Error
	if err != nil {
		return nil, err
	}
	return faqs, nil
}

// CreateFAQ inserts a FAQ, assigning a fresh identifier.
func (s *Service) CreateFAQ(ctx context.Context, faq FAQ) (FAQ, error) {
	id, err := s.idProvider.NewID()
	if err != nil {
		return FAQ{}, err
	}
	faq.ID = id
	if err := s.db.WithContext(ctx).Create(&faq).Error; err != nil {
		return FAQ{}, err
	}
	return faq, nil
}

// DeleteFAQ removes a FAQ.
func (s *Service) DeleteFAQ(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&FAQ{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func mapCatalogError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
