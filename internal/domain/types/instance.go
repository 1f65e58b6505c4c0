package types

// InstanceInfo is a read-only projection of the current instance state for
// callers. It is never persisted on its own; every read recomputes it from
// the credential store.
type InstanceInfo struct {
	UserID      UserID   `json:"user_id"`
	DeviceID    DeviceID `json:"device_id"`
	Initialized bool     `json:"initialized"`
	HasKeys     bool     `json:"has_keys"`
}

// InitializeOptions controls what Initialize is allowed to do. Unknown
// configuration keys are dropped before this struct is built.
type InitializeOptions struct {
	// GenerateKeysIfAbsent permits creating identity and pre-key material
	// when none exists yet.
	GenerateKeysIfAbsent bool

	// AutoSync publishes the bundle during Initialize and keeps a watch on
	// the local user's directory entry to trigger queue draining.
	AutoSync bool
}

// UploadOutcome reports how a directory write was handled.
type UploadOutcome string

const (
	// UploadApplied means the directory confirmed the write.
	UploadApplied UploadOutcome = "uploaded"

	// UploadQueued means the transport was unavailable and the write was
	// persisted for a later drain.
	UploadQueued UploadOutcome = "queued"
)
