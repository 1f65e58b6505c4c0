package directory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/decred/slog"

	"keysync/internal/domain"
)

// Client layers pre-key-bundle semantics over a generic Directory and owns
// the persisted offline queue. Bundle writes are keyed by (user, device) so
// multi-device publication never collides, and re-writing identical content
// is last-write-wins on the same path.
type Client struct {
	dir   domain.Directory
	queue domain.QueueStore
	log   slog.Logger

	// current supplies the freshest local bundle for refresh operations.
	// Optional; refresh entries fall back to their payload snapshot.
	current func() (domain.PreKeyBundle, bool, error)

	// Guards against overlapping drains. TryLock keeps triggers cheap:
	// a drain already in flight absorbs the new trigger.
	drainMu sync.Mutex
}

// NewClient returns a key-directory client over dir with queue as the
// offline log.
func NewClient(dir domain.Directory, queue domain.QueueStore) *Client {
	return &Client{dir: dir, queue: queue, log: slog.Disabled}
}

// SetLogger replaces the disabled default logger.
func (c *Client) SetLogger(log slog.Logger) { c.log = log }

// SetBundleSource registers the supplier of the current local bundle used
// when draining refresh operations.
func (c *Client) SetBundleSource(fn func() (domain.PreKeyBundle, bool, error)) {
	c.current = fn
}

func userPath(user domain.UserID) string {
	return "keys/" + user.String()
}

func bundlePath(user domain.UserID, device domain.DeviceID) string {
	return "keys/" + user.String() + "/" + device.String()
}

// Upload attempts an immediate write of bundle at its (user, device) path.
// A transport failure enqueues the operation and reports UploadQueued
// instead of failing; the caller never blocks on network recovery. A
// cancelled context is not queued: the operation is simply not applied.
func (c *Client) Upload(ctx context.Context, bundle domain.PreKeyBundle) (domain.UploadOutcome, error) {
	err := c.dir.Put(ctx, bundlePath(bundle.UserID, bundle.DeviceID), bundle)
	if err == nil {
		c.log.Debugf("Published bundle for %s/%s", bundle.UserID, bundle.DeviceID)
		return domain.UploadApplied, nil
	}
	if ctx.Err() != nil || !errors.Is(err, domain.Network) {
		return "", err
	}

	op, qerr := c.queue.Append(domain.PendingOperation{
		Kind:   domain.OpUploadKeys,
		Bundle: bundle,
	})
	if qerr != nil {
		// Queueing failed too; surface the original transport failure
		// with the storage problem attached.
		return "", domain.Wrap(domain.Network, errors.Join(err, qerr),
			"upload failed and could not be queued")
	}
	c.log.Infof("Directory unreachable, queued upload for %s/%s as op %d",
		bundle.UserID, bundle.DeviceID, op.Seq)
	return domain.UploadQueued, nil
}

// HasKeysForUser reports whether any device under user has a published
// bundle. An unreachable directory surfaces as a Network error so callers
// can tell it apart from a definitive absence.
func (c *Client) HasKeysForUser(ctx context.Context, user domain.UserID) (bool, error) {
	devices := map[domain.DeviceID]domain.PreKeyBundle{}
	found, err := c.dir.Get(ctx, userPath(user), &devices)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return len(devices) > 0, nil
}

// FetchBundles returns every published bundle for user, keyed by device id.
func (c *Client) FetchBundles(ctx context.Context, user domain.UserID) (map[domain.DeviceID]domain.PreKeyBundle, error) {
	devices := map[domain.DeviceID]domain.PreKeyBundle{}
	found, err := c.dir.Get(ctx, userPath(user), &devices)
	if err != nil {
		return nil, err
	}
	if !found {
		return map[domain.DeviceID]domain.PreKeyBundle{}, nil
	}
	return devices, nil
}

// DrainQueue replays pending operations strictly in enqueue order. Each
// entry is removed only after the directory confirmed the write, so a crash
// mid-drain leaves the queue consistent for replay. The first failure halts
// the drain and leaves the remainder intact. Only one drain runs at a time;
// an overlapping trigger returns immediately.
func (c *Client) DrainQueue(ctx context.Context) (int, error) {
	if !c.drainMu.TryLock() {
		return 0, nil
	}
	defer c.drainMu.Unlock()

	ops, err := c.queue.List()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, op := range ops {
		bundle, err := c.resolveBundle(op)
		if err != nil {
			return applied, err
		}
		path := bundlePath(bundle.UserID, bundle.DeviceID)
		if err := c.dir.Put(ctx, path, bundle); err != nil {
			c.log.Debugf("Drain halted at op %d: %v", op.Seq, err)
			return applied, err
		}
		if err := c.queue.Remove(op.Seq); err != nil {
			return applied, err
		}
		applied++
	}
	if applied > 0 {
		c.log.Infof("Drained %d pending directory operation(s)", applied)
	}
	return applied, nil
}

// resolveBundle picks the payload to replay for op. Refresh operations
// prefer the current local bundle over the enqueued snapshot.
func (c *Client) resolveBundle(op domain.PendingOperation) (domain.PreKeyBundle, error) {
	if op.Kind == domain.OpRefreshKeys && c.current != nil {
		b, ok, err := c.current()
		if err != nil {
			return domain.PreKeyBundle{}, err
		}
		if ok {
			return b, nil
		}
	}
	return op.Bundle, nil
}

// WatchUser streams directory updates for user's entry.
func (c *Client) WatchUser(ctx context.Context, user domain.UserID) (<-chan json.RawMessage, error) {
	return c.dir.Watch(ctx, userPath(user))
}

// PendingOperations lists the queued writes in enqueue order.
func (c *Client) PendingOperations() ([]domain.PendingOperation, error) {
	return c.queue.List()
}

// Compile-time assertion that Client implements domain.KeyDirectoryClient.
var _ domain.KeyDirectoryClient = (*Client)(nil)
