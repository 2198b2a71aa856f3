// Package users stores the identity records of the local single-tenant store.
package users

import (
	"context"

	"github.com/dmitrijs2005/planner/internal/models"
)

// Repository is the persistence surface for user rows.
//
// The store is single-tenant per device: Current returns the latest row and
// the orchestrator treats it as "the" user. Logout clears the token, it
// never deletes the row.
type Repository interface {
	Create(ctx context.Context, email, localID string) (int64, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Current(ctx context.Context) (*models.User, error)
	UpdateAuthToken(ctx context.Context, userID int64, token string) error
	ClearAuthToken(ctx context.Context, userID int64) error
}
