// Package store defines the persistence port for farmer records and its
// adapters. Adapters signal facts with pkg/sentinel errors wrapped exactly
// once; translation to domain errors happens in the service layer.
package store

import (
	"context"

	"plantas/internal/farmer/models"
	"plantas/pkg/domain"
)

// LocationFilter restricts a location query. Empty fields are unconstrained;
// set fields combine conjunctively.
type LocationFilter struct {
	Department string
	Province   string
	District   string
}

// MaxLocationResults caps location queries to bound response size.
const MaxLocationResults = 1000

// Store is the persistence contract consumed by the farmer service.
//
// Semantics:
//   - FindByDNI returns sentinel.ErrNotFound for a legitimately absent DNI.
//   - Save inserts a new row and returns sentinel.ErrConflict on a
//     unique-key violation; the service's existence pre-check is a
//     best-effort optimization, the constraint is the backstop.
//   - Update affects exactly one row matched by DNI, returns
//     sentinel.ErrNotFound when zero rows matched, and never inserts.
//   - Delete reports whether a row was removed; absence is not an error.
//   - List is ordered by (surname, given names, dni) so pagination is stable.
type Store interface {
	FindByDNI(ctx context.Context, dni domain.DNI) (*models.Farmer, error)
	Exists(ctx context.Context, dni domain.DNI) (bool, error)
	Save(ctx context.Context, f *models.Farmer) (*models.Farmer, error)
	Update(ctx context.Context, f *models.Farmer) (*models.Farmer, error)
	Delete(ctx context.Context, dni domain.DNI) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.Farmer, error)
	Count(ctx context.Context) (int64, error)
	FindByLocation(ctx context.Context, filter LocationFilter) ([]*models.Farmer, error)
}
