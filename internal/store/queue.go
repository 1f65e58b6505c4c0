package store

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"keysync/internal/domain"
)

const queueFile = "pending_ops.json"

// queueState is the on-disk shape of the pending-operation log. Bundles are
// public-only, so the file is plain JSON rather than a vault entry.
type queueState struct {
	NextSeq uint64                    `json:"next_seq"`
	Ops     []domain.PendingOperation `json:"ops"`
}

// FileQueue persists pending directory writes as a log-structured list
// keyed by monotonic sequence number. Entries survive process restarts and
// drain strictly in append order.
type FileQueue struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewFileQueue returns a FileQueue rooted at dir.
func NewFileQueue(dir string) *FileQueue {
	return &FileQueue{dir: dir, now: time.Now}
}

// Append assigns the next sequence number and id, persists the entry, and
// returns the stored operation.
func (q *FileQueue) Append(op domain.PendingOperation) (domain.PendingOperation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	st, err := q.load()
	if err != nil {
		return domain.PendingOperation{}, err
	}
	if st.NextSeq == 0 {
		st.NextSeq = 1
	}
	op.Seq = st.NextSeq
	op.ID = uuid.NewString()
	if op.EnqueuedAtMs == 0 {
		op.EnqueuedAtMs = q.now().UnixMilli()
	}
	st.NextSeq++
	st.Ops = append(st.Ops, op)
	if err := q.save(st); err != nil {
		return domain.PendingOperation{}, err
	}
	return op, nil
}

// List returns all pending operations in enqueue order.
func (q *FileQueue) List() ([]domain.PendingOperation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	st, err := q.load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.PendingOperation, len(st.Ops))
	copy(out, st.Ops)
	return out, nil
}

// Remove deletes the entry with the given sequence number. Removing an
// already-removed entry is not an error, so replays after a crash mid-drain
// stay safe.
func (q *FileQueue) Remove(seq uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	st, err := q.load()
	if err != nil {
		return err
	}
	kept := st.Ops[:0]
	for _, op := range st.Ops {
		if op.Seq != seq {
			kept = append(kept, op)
		}
	}
	if len(kept) == len(st.Ops) {
		return nil
	}
	st.Ops = kept
	return q.save(st)
}

// Len reports the number of pending operations.
func (q *FileQueue) Len() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	st, err := q.load()
	if err != nil {
		return 0, err
	}
	return len(st.Ops), nil
}

func (q *FileQueue) load() (queueState, error) {
	var st queueState
	if err := readJSON(filepath.Join(q.dir, queueFile), &st); err != nil {
		return queueState{}, domain.Wrap(domain.Storage, err, "read pending queue")
	}
	return st, nil
}

func (q *FileQueue) save(st queueState) error {
	if err := writeJSON(filepath.Join(q.dir, queueFile), st, 0o600); err != nil {
		return domain.Wrap(domain.Storage, err, "write pending queue")
	}
	return nil
}

// Compile-time assertion that FileQueue implements domain.QueueStore.
var _ domain.QueueStore = (*FileQueue)(nil)
