// Package acl stores relay object ownership and download lists.
package acl

import (
	"context"

	"github.com/dmitrijs2005/corral/internal/server/models"
)

// Repository persists ACLs. Unknown object keys yield common.ErrorNotFound.
type Repository interface {
	// ClaimOwner records owner for key unless the key already has one, and
	// returns the owner on record.
	ClaimOwner(ctx context.Context, key, owner string) (string, error)

	Get(ctx context.Context, key string) (*models.ACL, error)

	// ReplaceMembers swaps the download list of an owned key.
	ReplaceMembers(ctx context.Context, key string, members []string) error
}
