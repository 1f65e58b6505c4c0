package platform_test

import (
	"runtime"
	"strings"
	"testing"

	"keysync/internal/platform"
)

func TestHostFingerprintIncludesOS(t *testing.T) {
	h := platform.NewHost()
	fp, err := h.Fingerprint()
	if err != nil {
		// A fully attribute-less host is legitimate; the fallback path
		// covers it.
		t.Skipf("no platform attributes on this host: %v", err)
	}
	if !strings.HasSuffix(fp, runtime.GOOS) {
		t.Fatalf("fingerprint %q does not end with the OS name", fp)
	}
}

func TestOSName(t *testing.T) {
	if got := platform.NewHost().OSName(); got != runtime.GOOS {
		t.Fatalf("OSName() = %q", got)
	}
}
