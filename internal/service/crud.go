package service

import (
	"context"

	apperrors "github.com/glowday/api/internal/errors"
	"github.com/glowday/api/internal/repository"
	"github.com/glowday/api/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Hooks customizes the shared CRUD lifecycle per entity. Every hook is
// optional; a nil hook is skipped. The before-create and before-update hooks
// return the payload that actually gets persisted, so they can replace it
// wholesale rather than mutate in place.
type Hooks[T any] struct {
	BeforeList   func(ctx context.Context, query *gorm.DB) *gorm.DB
	BeforeShow   func(ctx context.Context, query *gorm.DB) *gorm.DB
	BeforeCreate func(ctx context.Context, record *T) (*T, error)
	AfterCreate  func(ctx context.Context, record *T) error
	BeforeUpdate func(ctx context.Context, id uint, changes map[string]interface{}) (map[string]interface{}, error)
	AfterUpdate  func(ctx context.Context, id uint, record *T) error
	BeforeDelete func(ctx context.Context, id uint) error
	AfterDelete  func(ctx context.Context, id uint) error
}

// CRUDService runs the common list/show/create/update/delete flows against a
// store, threading the entity's hooks through each operation.
type CRUDService[T any] struct {
	store *repository.Store[T]
	hooks Hooks[T]
}

func NewCRUDService[T any](store *repository.Store[T], hooks Hooks[T]) *CRUDService[T] {
	return &CRUDService[T]{store: store, hooks: hooks}
}

// Store exposes the underlying store for entity services composed around this
// one.
func (s *CRUDService[T]) Store() *repository.Store[T] {
	return s.store
}

func (s *CRUDService[T]) listScope(ctx context.Context) repository.Scope {
	if s.hooks.BeforeList == nil {
		return nil
	}
	return func(query *gorm.DB) *gorm.DB {
		return s.hooks.BeforeList(ctx, query)
	}
}

func (s *CRUDService[T]) showScope(ctx context.Context) repository.Scope {
	if s.hooks.BeforeShow == nil {
		return nil
	}
	return func(query *gorm.DB) *gorm.DB {
		return s.hooks.BeforeShow(ctx, query)
	}
}

// List returns one page of records with the entity's list scope applied.
func (s *CRUDService[T]) List(ctx context.Context, page, limit int) (*repository.Page[T], error) {
	result, err := s.store.List(ctx, s.listScope(ctx), page, limit)
	if err != nil {
		logger.GetLogger().Error("Failed to list records", zap.Error(err))
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return result, nil
}

// GetByID fetches a single record through the fillables projection.
func (s *CRUDService[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	record, err := s.store.GetByID(ctx, id, s.showScope(ctx))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		logger.GetLogger().Error("Failed to fetch record", zap.Error(err), zap.Uint("id", id))
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return record, nil
}

// Create runs the before-create hook, persists the returned payload, runs the
// after-create hook and refetches so the response honors the fillables.
func (s *CRUDService[T]) Create(ctx context.Context, record *T) (*T, error) {
	if s.hooks.BeforeCreate != nil {
		replaced, err := s.hooks.BeforeCreate(ctx, record)
		if err != nil {
			return nil, err
		}
		record = replaced
	}

	if err := s.store.Create(ctx, record); err != nil {
		logger.GetLogger().Error("Failed to create record", zap.Error(err))
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	id := recordID(record)

	if s.hooks.AfterCreate != nil {
		if err := s.hooks.AfterCreate(ctx, record); err != nil {
			return nil, err
		}
	}

	return s.GetByID(ctx, id)
}

// Update runs the before-update hook, merges the returned changes and
// refetches the record for the after-update hook and the response.
func (s *CRUDService[T]) Update(ctx context.Context, id uint, changes map[string]interface{}) (*T, error) {
	if s.hooks.BeforeUpdate != nil {
		replaced, err := s.hooks.BeforeUpdate(ctx, id, changes)
		if err != nil {
			return nil, err
		}
		changes = replaced
	}

	if err := s.store.Update(ctx, id, changes); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		logger.GetLogger().Error("Failed to update record", zap.Error(err), zap.Uint("id", id))
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	record, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.hooks.AfterUpdate != nil {
		if err := s.hooks.AfterUpdate(ctx, id, record); err != nil {
			return nil, err
		}
	}

	return record, nil
}

// Delete removes a record under the entity's delete policy and reports the
// id back. The before-delete hook observes the id; it cannot veto by
// returning data, only by erroring.
func (s *CRUDService[T]) Delete(ctx context.Context, id uint) (uint, error) {
	if s.hooks.BeforeDelete != nil {
		if err := s.hooks.BeforeDelete(ctx, id); err != nil {
			return 0, err
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		logger.GetLogger().Error("Failed to delete record", zap.Error(err), zap.Uint("id", id))
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if s.hooks.AfterDelete != nil {
		if err := s.hooks.AfterDelete(ctx, id); err != nil {
			return 0, err
		}
	}

	return id, nil
}

type identifiable interface {
	GetID() uint
}

// recordID reads the primary key off a persisted record.
func recordID(record interface{}) uint {
	if r, ok := record.(identifiable); ok {
		return r.GetID()
	}
	return 0
}
