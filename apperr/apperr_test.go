package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("accept order: %w", InvalidState("order is not pending"))
	if KindOf(err) != KindInvalidState {
		t.Fatalf("KindOf = %v", KindOf(err))
	}
	if HTTPStatus(err) != http.StatusConflict {
		t.Fatalf("HTTPStatus = %d", HTTPStatus(err))
	}
	if PublicMessage(err) != "order is not pending" {
		t.Fatalf("PublicMessage = %q", PublicMessage(err))
	}
}

func TestUnknownErrorIsDependencyFailure(t *testing.T) {
	err := errors.New("boom")
	if KindOf(err) != KindDependencyFailure {
		t.Fatalf("KindOf = %v", KindOf(err))
	}
	if PublicMessage(err) != "internal server error" {
		t.Fatalf("PublicMessage = %q", PublicMessage(err))
	}
}

func TestDependencyUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Dependency("failed to load account", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected Dependency to wrap its cause")
	}
	if !Is(err, KindDependencyFailure) {
		t.Fatal("expected dependency kind")
	}
}
