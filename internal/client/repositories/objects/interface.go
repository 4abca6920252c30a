// Package objects stores content descriptors on the device.
package objects

import (
	"context"

	"github.com/dmitrijs2005/corral/internal/client/models"
)

// Repository persists content descriptors. Lookups of unknown ids or hashes
// return common.ErrorNotFound.
type Repository interface {
	// Upsert inserts the object or replaces every column of an existing row.
	Upsert(ctx context.Context, o *models.Object) error

	// GetByID returns the object, including deleted ones.
	GetByID(ctx context.Context, id string) (*models.Object, error)

	// GetByHash returns the newest object carrying hash.
	GetByHash(ctx context.Context, hash string) (*models.Object, error)

	// ListAuthored returns up to limit objects authored on this device,
	// newest first, skipping deleted ones.
	ListAuthored(ctx context.Context, limit int) ([]*models.Object, error)

	// ListPendingUpload returns authored objects not yet pushed to the relay.
	ListPendingUpload(ctx context.Context) ([]*models.Object, error)

	// MarkUploaded records that the relay holds the object's blob.
	MarkUploaded(ctx context.Context, id string) error

	// MarkDeleted flags the object as deleted.
	MarkDeleted(ctx context.Context, id string) error
}
