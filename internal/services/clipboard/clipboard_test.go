package clipboard

import (
	"errors"
	"testing"
)

func TestServiceCopy(t *testing.T) {
	var copied string
	service := &Service{write: func(text string) error {
		copied = text
		return nil
	}}

	if err := service.Copy("merged"); err != nil {
		t.Fatalf("Copy error: %v", err)
	}
	if copied != "merged" {
		t.Fatalf("expected copied text, got %q", copied)
	}
}

func TestServiceCopyErrors(t *testing.T) {
	writeErr := errors.New("xclip missing")
	failing := &Service{write: func(string) error { return writeErr }}
	if err := failing.Copy("merged"); !errors.Is(err, writeErr) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}

	unsupported := &Service{
		write:       func(string) error { t.Fatalf("write must not be called"); return nil },
		unsupported: func() bool { return true },
	}
	if err := unsupported.Copy("merged"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
