package directory_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"keysync/internal/directory"
	"keysync/internal/domain"
	"keysync/internal/store"
)

// fakeDirectory is an in-memory Directory with a switchable transport
// failure mode.
type fakeDirectory struct {
	docs    map[string]json.RawMessage
	offline bool
	puts    []string
	failAt  string // path whose put fails even when online
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{docs: make(map[string]json.RawMessage)}
}

func (d *fakeDirectory) Put(_ context.Context, path string, value any) error {
	if d.offline || path == d.failAt {
		return domain.E(domain.Network, "directory unreachable")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	d.docs[path] = raw
	d.puts = append(d.puts, path)
	return nil
}

func (d *fakeDirectory) Get(_ context.Context, path string, out any) (bool, error) {
	if d.offline {
		return false, domain.E(domain.Network, "directory unreachable")
	}
	// A prefix get assembles the children, mirroring a hierarchical store.
	children := map[string]json.RawMessage{}
	for p, raw := range d.docs {
		if strings.HasPrefix(p, path+"/") {
			children[p[len(path)+1:]] = raw
		}
	}
	if raw, ok := d.docs[path]; ok {
		return true, json.Unmarshal(raw, out)
	}
	if len(children) == 0 {
		return false, nil
	}
	raw, err := json.Marshal(children)
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, out)
}

func (d *fakeDirectory) Watch(ctx context.Context, path string) (<-chan json.RawMessage, error) {
	if d.offline {
		return nil, domain.E(domain.Network, "directory unreachable")
	}
	ch := make(chan json.RawMessage)
	close(ch)
	return ch, nil
}

func newClient(t *testing.T, dir *fakeDirectory) *directory.Client {
	t.Helper()
	return directory.NewClient(dir, store.NewFileQueue(t.TempDir()))
}

func bundleFor(user domain.UserID, dev domain.DeviceID) domain.PreKeyBundle {
	return domain.PreKeyBundle{
		UserID:         user,
		DeviceID:       dev,
		RegistrationID: 7,
		SignedPreKeyID: "spk-1",
	}
}

func TestUpload_Applied(t *testing.T) {
	dir := newFakeDirectory()
	c := newClient(t, dir)

	outcome, err := c.Upload(context.Background(), bundleFor("alice", "dev-1"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if outcome != domain.UploadApplied {
		t.Fatalf("outcome = %v", outcome)
	}
	if _, ok := dir.docs["keys/alice/dev-1"]; !ok {
		t.Fatal("bundle not written at the (user, device) path")
	}
}

func TestUpload_OfflineQueuesInsteadOfFailing(t *testing.T) {
	dir := newFakeDirectory()
	dir.offline = true
	c := newClient(t, dir)

	outcome, err := c.Upload(context.Background(), bundleFor("alice", "dev-1"))
	if err != nil {
		t.Fatalf("offline upload returned error: %v", err)
	}
	if outcome != domain.UploadQueued {
		t.Fatalf("outcome = %v, want queued", outcome)
	}

	ops, err := c.PendingOperations()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(ops) != 1 || ops[0].Kind != domain.OpUploadKeys {
		t.Fatalf("pending ops = %+v", ops)
	}

	// Connectivity restored: drain publishes the bundle.
	dir.offline = false
	applied, err := c.DrainQueue(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if applied != 1 {
		t.Fatalf("applied = %d", applied)
	}
	if _, ok := dir.docs["keys/alice/dev-1"]; !ok {
		t.Fatal("drained bundle missing from directory")
	}
	if ops, _ = c.PendingOperations(); len(ops) != 0 {
		t.Fatalf("queue not empty after drain: %+v", ops)
	}
}

func TestDrain_HaltsMidwayPreservingOrder(t *testing.T) {
	dir := newFakeDirectory()
	dir.offline = true
	c := newClient(t, dir)

	ctx := context.Background()
	for _, dev := range []domain.DeviceID{"dev-1", "dev-2", "dev-3"} {
		if _, err := c.Upload(ctx, bundleFor("alice", dev)); err != nil {
			t.Fatalf("queue %s: %v", dev, err)
		}
	}

	// The second entry's path keeps failing after reconnection.
	dir.offline = false
	dir.failAt = "keys/alice/dev-2"

	applied, err := c.DrainQueue(ctx)
	if err == nil {
		t.Fatal("expected drain to halt with an error")
	}
	if applied != 1 {
		t.Fatalf("applied = %d, want 1", applied)
	}

	ops, _ := c.PendingOperations()
	if len(ops) != 2 {
		t.Fatalf("remaining ops = %d, want 2", len(ops))
	}
	// No skip-ahead: dev-2 still precedes dev-3.
	if ops[0].Bundle.DeviceID != "dev-2" || ops[1].Bundle.DeviceID != "dev-3" {
		t.Fatalf("queue order broken: %+v", ops)
	}

	// Next trigger finishes the job.
	dir.failAt = ""
	applied, err = c.DrainQueue(ctx)
	if err != nil || applied != 2 {
		t.Fatalf("second drain: applied=%d err=%v", applied, err)
	}
}

func TestHasKeysForUser(t *testing.T) {
	dir := newFakeDirectory()
	c := newClient(t, dir)
	ctx := context.Background()

	ok, err := c.HasKeysForUser(ctx, "nonexistent-user")
	if err != nil {
		t.Fatalf("empty directory: %v", err)
	}
	if ok {
		t.Fatal("empty directory reported keys")
	}

	if _, err := c.Upload(ctx, bundleFor("bob", "dev-9")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	ok, err = c.HasKeysForUser(ctx, "bob")
	if err != nil || !ok {
		t.Fatalf("after upload: ok=%v err=%v", ok, err)
	}

	dir.offline = true
	_, err = c.HasKeysForUser(ctx, "bob")
	if err == nil {
		t.Fatal("unreachable directory reported a definitive answer")
	}
	if domain.KindOf(err) != domain.Network {
		t.Fatalf("kind = %v, want network", domain.KindOf(err))
	}
}

func TestFetchBundles(t *testing.T) {
	dir := newFakeDirectory()
	c := newClient(t, dir)
	ctx := context.Background()

	for _, dev := range []domain.DeviceID{"dev-1", "dev-2"} {
		if _, err := c.Upload(ctx, bundleFor("carol", dev)); err != nil {
			t.Fatalf("upload: %v", err)
		}
	}
	bundles, err := c.FetchBundles(ctx, "carol")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(bundles) != 2 {
		t.Fatalf("got %d bundles", len(bundles))
	}
	if b, ok := bundles["dev-1"]; !ok || b.UserID != "carol" {
		t.Fatalf("bundle dev-1 = %+v ok=%v", b, ok)
	}
}

func TestUpload_CancelledContextIsNotQueued(t *testing.T) {
	dir := newFakeDirectory()
	dir.offline = true
	c := newClient(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Upload(ctx, bundleFor("alice", "dev-1"))
	if err == nil {
		t.Fatal("expected error for cancelled upload")
	}
	if ops, _ := c.PendingOperations(); len(ops) != 0 {
		t.Fatalf("cancelled upload was queued: %+v", ops)
	}
}
