// Package clipboard copies merged documents to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnavailable reports that no clipboard utility is available on this system.
var ErrUnavailable = errors.New("system clipboard unavailable")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct {
	write       func(string) error
	unsupported func() bool
}

// NewService constructs a clipboard Service backed by the system clipboard.
func NewService() *Service {
	return &Service{
		write:       clipboard.WriteAll,
		unsupported: func() bool { return clipboard.Unsupported },
	}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if service.unsupported != nil && service.unsupported() {
		return ErrUnavailable
	}
	if writeErr := service.write(text); writeErr != nil {
		return fmt.Errorf("copy %d bytes to clipboard: %w", len(text), writeErr)
	}
	return nil
}

var _ Copier = (*Service)(nil)
