package domain

import "context"

// SnapshotSource hands out a consistent snapshot of the network
// configuration. How consistent is up to the implementation; the pgx-backed
// repository reads every table inside one repeatable-read transaction.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}
