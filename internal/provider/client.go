// Package provider is the contract with the remote identity and sync
// service. The planner core only consumes this API; any backend that
// speaks it can serve as the cloud side.
package provider

import (
	"context"

	"github.com/dmitrijs2005/planner/internal/models"
)

// AuthResult is what the provider returns for a successful login or
// registration.
type AuthResult struct {
	UID   string
	Email string
	Token string
}

// Client is the remote provider surface consumed by the orchestrator.
//
// Errors split into two classes that drive the offline fallback:
// unreachability (wrapped common.ErrorProviderUnavailable — fallback is
// allowed) and credential rejection (common.ErrorUnauthorized,
// ErrorUserNotFound, ErrorAlreadyExists — fallback is forbidden).
type Client interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	SyncData(ctx context.Context, token string, payload *models.SyncPayload) error
	GetCloudData(ctx context.Context, token string) (*models.SyncPayload, error)
	Ping(ctx context.Context) error
}
