// Package repository defines the persistence interfaces the services
// program against. The sqlite subpackage is the concrete implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/geodata-manager/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail returns apperror.ErrNotFound when no account uses the
	// address; registration's uniqueness pre-check relies on that.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type GeoDataRepository interface {
	Create(ctx context.Context, record *model.GeoData) error
	// List returns every record regardless of owner or visibility — the
	// public listing endpoint.
	List(ctx context.Context) ([]model.GeoData, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.GeoData, error)
	// GetByIDAndOwner, Update and Delete scope by owner: a non-owner's id
	// and a nonexistent id are both reported as not found.
	GetByIDAndOwner(ctx context.Context, id, ownerID string) (*model.GeoData, error)
	Update(ctx context.Context, record *model.GeoData) error
	Delete(ctx context.Context, id, ownerID string) error
}
