// Package platform implements the host-fingerprint capability used for
// device-id derivation. The fingerprint is advisory and human-debuggable,
// not a security boundary; it only needs to differ across installs.
package platform

import (
	"os"
	"runtime"
	"strings"

	"keysync/internal/domain"
)

// Files that carry a vendor-assigned install identifier on common platforms.
var machineIDPaths = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
	"/etc/hostid",
}

// Host builds fingerprints from stable OS attributes: a machine id where
// one exists, plus hostname and OS name.
type Host struct{}

// NewHost returns the default host fingerprinter.
func NewHost() *Host { return &Host{} }

// Fingerprint composes machine id, hostname and OS name. It fails only when
// no attribute at all could be read; callers fall back to OSName then.
func (*Host) Fingerprint() (string, error) {
	var parts []string

	for _, path := range machineIDPaths {
		b, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(b)); id != "" {
			parts = append(parts, id)
			break
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		parts = append(parts, host)
	}

	if len(parts) == 0 {
		return "", domain.E(domain.Storage, "no stable platform attributes readable")
	}
	parts = append(parts, runtime.GOOS)
	return strings.Join(parts, "|"), nil
}

// OSName names the operating system for the fallback device-id path.
func (*Host) OSName() string { return runtime.GOOS }

// Compile-time assertion that Host implements domain.Fingerprinter.
var _ domain.Fingerprinter = (*Host)(nil)
