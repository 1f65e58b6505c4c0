package interfaces

// Fingerprinter produces a best-effort stable description of the host the
// install runs on. Implementations are selected per platform at build time;
// core logic depends only on this interface.
type Fingerprinter interface {
	// Fingerprint returns a string built from stable hardware/OS
	// attributes. It may fail; device-id derivation then falls back to the
	// OS name.
	Fingerprint() (string, error)

	// OSName names the operating system, used by the fallback path.
	OSName() string
}
