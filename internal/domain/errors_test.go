package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"keysync/internal/domain"
)

func TestErrorKindMatching(t *testing.T) {
	err := domain.E(domain.Network, "directory unreachable")
	if !errors.Is(err, domain.Network) {
		t.Fatal("error does not match its own kind")
	}
	if errors.Is(err, domain.Storage) {
		t.Fatal("error matches a foreign kind")
	}
	if domain.KindOf(err) != domain.Network {
		t.Fatalf("KindOf = %q", domain.KindOf(err))
	}
}

func TestErrorWrappingKeepsCauseVisible(t *testing.T) {
	cause := domain.E(domain.Key, "no identity key pair exists")
	err := domain.Wrap(domain.Initialization, cause, "initialize instance")

	if !errors.Is(err, domain.Initialization) {
		t.Fatal("outer kind lost")
	}
	if !errors.Is(err, domain.Key) {
		t.Fatal("inner kind lost through wrapping")
	}
	if domain.KindOf(err) != domain.Initialization {
		t.Fatalf("KindOf = %q", domain.KindOf(err))
	}
}

func TestErrorWrapsForeignCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := domain.Wrap(domain.Network, cause, "put bundle")
	if !errors.Is(err, cause) {
		t.Fatal("cause lost")
	}
	if got := err.Error(); got != "network: put bundle: connection refused" {
		t.Fatalf("message %q", got)
	}
}

func TestErrorCodeAndDetails(t *testing.T) {
	err := domain.E(domain.Validation, "userId must not be empty").
		WithCode("empty_id").
		WithDetail("field", "userId")
	if err.Code != "empty_id" {
		t.Fatalf("code %q", err.Code)
	}
	if err.Details["field"] != "userId" {
		t.Fatalf("details %v", err.Details)
	}
}
