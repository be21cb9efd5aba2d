package domain

import (
	"context"
	"errors"
)

// Directory resolves client references for invoice descriptions.
// A missing client resolves to nil, not an error; callers render a
// placeholder instead of failing the whole invoice run.
type Directory interface {
	GetByID(ctx context.Context, id string) (*Client, error)
	List(ctx context.Context) ([]Client, error)
}

var ErrInvalidClientID = errors.New("invalid_client_id")
