package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository is a minimal generic gorm store shared by domain services.
type Repository[T any] interface {
	Find(ctx context.Context, conds ...any) ([]T, error)
	First(ctx context.Context, conds ...any) (*T, error)
	Create(ctx context.Context, value *T) error
	Save(ctx context.Context, value *T) error
	Delete(ctx context.Context, conds ...any) error
}

type store[T any] struct {
	db *gorm.DB
}

// ProvideStore builds a Repository backed by the given connection.
func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) Find(ctx context.Context, conds ...any) ([]T, error) {
	var values []T
	if err := s.db.WithContext(ctx).Find(&values, conds...).Error; err != nil {
		return nil, err
	}
	return values, nil
}

func (s *store[T]) First(ctx context.Context, conds ...any) (*T, error) {
	var value T
	err := s.db.WithContext(ctx).First(&value, conds...).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (s *store[T]) Create(ctx context.Context, value *T) error {
	return s.db.WithContext(ctx).Create(value).Error
}

func (s *store[T]) Save(ctx context.Context, value *T) error {
	return s.db.WithContext(ctx).Save(value).Error
}

func (s *store[T]) Delete(ctx context.Context, conds ...any) error {
	var value T
	return s.db.WithContext(ctx).Delete(&value, conds...).Error
}
