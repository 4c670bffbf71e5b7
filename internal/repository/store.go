package repository

import (
	"context"
	"errors"
	"math"

	"github.com/glowday/api/pkg/logger"
	"gorm.io/gorm"
)

// Scope narrows a query before it runs; list hooks use it to add conditions
// or ordering without touching pagination.
type Scope func(*gorm.DB) *gorm.DB

// Config declares per-entity store policy.
type Config struct {
	// Fillables is the allow-list of selected columns. Empty means all.
	Fillables []string
	// SoftDelete stamps deleted_at instead of removing the row. Entities opt
	// out to get hard deletes.
	SoftDelete bool
}

// Page is the paginated list result. The count is computed against the filter
// condition, not the page window.
type Page[T any] struct {
	Records     []T   `json:"records"`
	Count       int64 `json:"count"`
	PageCount   int   `json:"pageCount"`
	PerPage     int   `json:"perPage"`
	CurrentPage int   `json:"currentPage"`
}

// Store is the generic record store adapter. Reads never see soft-deleted
// rows and only project fillable columns.
type Store[T any] struct {
	db  *gorm.DB
	cfg Config
}

func NewStore[T any](db *gorm.DB, cfg Config) *Store[T] {
	return &Store[T]{db: db, cfg: cfg}
}

// DB exposes the underlying handle for entity-specific repositories built on
// top of the store.
func (s *Store[T]) DB() *gorm.DB {
	return s.db
}

// SoftDelete reports the configured delete policy.
func (s *Store[T]) SoftDelete() bool {
	return s.cfg.SoftDelete
}

func (s *Store[T]) base(ctx context.Context, scope Scope) *gorm.DB {
	query := s.db.WithContext(ctx).Model(new(T))
	if scope != nil {
		query = scope(query)
	}
	return query
}

// List returns one page of non-deleted records. The limit defaults to 10 when
// absent or invalid; page is 1-indexed externally.
func (s *Store[T]) List(ctx context.Context, scope Scope, page, limit int) (*Page[T], error) {
	if limit < 1 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}

	var count int64
	if err := s.base(ctx, scope).Count(&count).Error; err != nil {
		logger.GetLogger().Error("Failed to count records")
		return nil, err
	}

	query := s.base(ctx, scope)
	if len(s.cfg.Fillables) > 0 {
		query = query.Select(s.cfg.Fillables)
	}

	var records []T
	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&records).Error; err != nil {
		logger.GetLogger().Error("Failed to fetch records")
		return nil, err
	}

	return &Page[T]{
		Records:     records,
		Count:       count,
		PageCount:   int(math.Ceil(float64(count) / float64(limit))),
		PerPage:     limit,
		CurrentPage: page,
	}, nil
}

// GetByID returns a single record or gorm.ErrRecordNotFound. Soft-deleted
// rows are invisible here as everywhere else.
func (s *Store[T]) GetByID(ctx context.Context, id uint, scope Scope) (*T, error) {
	query := s.base(ctx, scope)
	if len(s.cfg.Fillables) > 0 {
		query = query.Select(s.cfg.Fillables)
	}

	var record T
	if err := query.Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Create persists a new record in place, backfilling its id.
func (s *Store[T]) Create(ctx context.Context, record *T) error {
	return s.db.WithContext(ctx).Create(record).Error
}

// Update applies a partial merge of column changes.
func (s *Store[T]) Update(ctx context.Context, id uint, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	result := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a record according to the entity's delete policy. Deleting a
// row that is already gone is not an error; the caller still reports the id.
func (s *Store[T]) Delete(ctx context.Context, id uint) error {
	query := s.db.WithContext(ctx)
	if !s.cfg.SoftDelete {
		query = query.Unscoped()
	}
	result := query.Delete(new(T), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		logger.GetLogger().Warn("Delete affected no rows")
	}
	return nil
}

// IsNotFound reports whether err is the store's not-found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
