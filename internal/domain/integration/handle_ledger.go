package integration

import "context"

// HandleLedger remembers which handles were already created on a shop so a
// repeated import of the same sheet does not create duplicates.
type HandleLedger interface {
	// IsImported reports whether the handle was recorded for the shop
	IsImported(ctx context.Context, shop, handle string) (bool, error)

	// MarkImported records a created handle. It returns false if the handle
	// was already recorded.
	MarkImported(ctx context.Context, shop, handle string, remoteID int64) (bool, error)

	// Forget removes a handle so it is imported again
	Forget(ctx context.Context, shop, handle string) error
}
