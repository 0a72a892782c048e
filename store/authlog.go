package store

import (
	"context"

	"github.com/docmill/docgate/models"
)

// AuthLogStore records the auth audit trail. Recording must never block an
// authentication outcome: callers log and continue on error.
type AuthLogStore interface {
	Record(ctx context.Context, event models.AuthEvent) error

	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]models.AuthEvent, error)
}
