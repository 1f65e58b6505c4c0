package interfaces

import (
	"context"
	"encoding/json"

	domaintypes "keysync/internal/domain/types"
)

// Directory is the remote path-addressed document store holding published
// key material. Paths are slash-separated, values JSON documents. All calls
// honour context cancellation at the transport boundary.
type Directory interface {
	Put(ctx context.Context, path string, value any) error

	// Get reports found=false for a definitively absent path. Transport
	// failures surface as errors so callers can tell the two apart.
	Get(ctx context.Context, path string, out any) (found bool, err error)

	// Watch streams the value at path: the current value first, then every
	// update. The channel closes when ctx is cancelled or the stream dies.
	Watch(ctx context.Context, path string) (<-chan json.RawMessage, error)
}

// KeyDirectoryClient layers bundle semantics over a Directory and owns the
// offline queue.
type KeyDirectoryClient interface {
	// Upload writes the bundle at its (user, device) path. On transport
	// failure the write is queued and the call reports UploadQueued
	// instead of failing.
	Upload(ctx context.Context, bundle domaintypes.PreKeyBundle) (domaintypes.UploadOutcome, error)

	// HasKeysForUser reports whether any device under user has a published
	// bundle. An unreachable directory is an error, never a false.
	HasKeysForUser(ctx context.Context, user domaintypes.UserID) (bool, error)

	// FetchBundles returns every published bundle for user, keyed by device.
	FetchBundles(ctx context.Context, user domaintypes.UserID) (map[domaintypes.DeviceID]domaintypes.PreKeyBundle, error)

	// DrainQueue replays pending operations in FIFO order, removing each
	// only after a confirmed apply. A failure halts the drain; the rest of
	// the queue stays for the next trigger. At most one drain runs at a
	// time; overlapping triggers return immediately.
	DrainQueue(ctx context.Context) (applied int, err error)

	// WatchUser streams directory updates for user's entry.
	WatchUser(ctx context.Context, user domaintypes.UserID) (<-chan json.RawMessage, error)

	PendingOperations() ([]domaintypes.PendingOperation, error)
}
