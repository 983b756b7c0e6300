// Package location defines the geolocation collaborator contract. The
// browser UI resolves positions itself; on the server side a Static
// fallback answers requests that carry no coordinates.
package location

import (
	"context"
	"errors"

	"github.com/Jeffrey0117/isnowfriend/internal/models"
)

var (
	ErrPermissionDenied = errors.New("location: permission denied")
	ErrUnavailable      = errors.New("location: position unavailable")
	ErrTimeout          = errors.New("location: timed out")
)

type Service interface {
	CurrentPosition(ctx context.Context) (models.Coordinate, error)
}

// UserMessage maps a location failure to the text shown to the end user.
// These are the only upstream errors surfaced verbatim to the UI.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "Location permission was denied; allow location access and try again"
	case errors.Is(err, ErrUnavailable):
		return "Your position is temporarily unavailable; try again shortly"
	case errors.Is(err, ErrTimeout):
		return "Locating you took too long; check your connection"
	default:
		return "Unable to determine your location"
	}
}

// Static always answers with a fixed coordinate (the configured default
// search center).
type Static struct {
	At models.Coordinate
}

func NewStatic(at models.Coordinate) *Static { return &Static{At: at} }

func (s *Static) CurrentPosition(ctx context.Context) (models.Coordinate, error) {
	return s.At, nil
}
