package types

// OperationKind names a deferred directory write.
type OperationKind string

const (
	// OpUploadKeys publishes the bundle carried in the operation payload.
	OpUploadKeys OperationKind = "upload_keys"

	// OpRefreshKeys republishes the current local bundle, ignoring the
	// payload snapshot.
	OpRefreshKeys OperationKind = "refresh_keys"
)

// PendingOperation is one entry of the persisted offline queue. Entries are
// assigned a monotonic sequence number on append and drained strictly in
// that order.
type PendingOperation struct {
	ID           string        `json:"id"`
	Seq          uint64        `json:"seq"`
	Kind         OperationKind `json:"kind"`
	Bundle       PreKeyBundle  `json:"bundle"`
	EnqueuedAtMs int64         `json:"enqueued_at_ms"`
}
