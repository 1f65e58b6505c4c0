// Package validate holds the pure input-contract checks gating every other
// component. Functions here do no I/O, keep no state, and are safe to call
// concurrently. Failures are Validation errors whose message names the
// offending field.
package validate

import (
	"math"
	"net/url"
	"regexp"

	"keysync/internal/domain"
)

// MaxMessageBytes is the protocol-level ceiling on a single message payload.
const MaxMessageBytes = 1 << 20

const maxIDLength = 255

var idPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// UserID checks the shape of a user identifier.
func UserID(s string) error {
	return checkID("userId", s)
}

// GroupID checks the shape of a group identifier. Same rules as user ids.
func GroupID(s string) error {
	return checkID("groupId", s)
}

func checkID(field, s string) error {
	switch {
	case s == "":
		return domain.Ef(domain.Validation, "%s must not be empty", field).
			WithCode("empty_" + field)
	case len(s) > maxIDLength:
		return domain.Ef(domain.Validation, "%s exceeds %d characters", field, maxIDLength).
			WithDetail("length", len(s))
	case !idPattern.MatchString(s):
		return domain.Ef(domain.Validation,
			"%s contains characters outside [A-Za-z0-9._-]", field)
	}
	return nil
}

// DeviceID checks a protocol device number: any non-negative value in the
// 32-bit signed integer space.
func DeviceID(n int64) error {
	if n < 0 || n > math.MaxInt32 {
		return domain.Ef(domain.Validation,
			"deviceId must be a non-negative 32-bit integer, got %d", n)
	}
	return nil
}

// Message checks a message payload: non-empty and at most MaxMessageBytes.
func Message(s string) error {
	if s == "" {
		return domain.E(domain.Validation, "message must not be empty")
	}
	if len(s) > MaxMessageBytes {
		return domain.Ef(domain.Validation,
			"message exceeds %d bytes", MaxMessageBytes).
			WithDetail("length", len(s))
	}
	return nil
}

// DirectoryURL checks a directory endpoint: an https URL with a host.
func DirectoryURL(s string) error {
	if s == "" {
		return domain.E(domain.Validation, "directory URL must not be empty")
	}
	u, err := url.Parse(s)
	if err != nil {
		return domain.Wrap(domain.Validation, err, "directory URL does not parse")
	}
	if u.Scheme != "https" {
		return domain.Ef(domain.Validation,
			"directory URL must use https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return domain.E(domain.Validation, "directory URL is missing a host")
	}
	return nil
}
