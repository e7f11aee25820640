package aegis

import (
	"errors"
	"fmt"

	"github.com/robertogiachetta/aegis-origin/cluster"
	"github.com/robertogiachetta/aegis-origin/config"
	"github.com/robertogiachetta/aegis-origin/distance"
	"github.com/robertogiachetta/aegis-origin/raster"
	"github.com/robertogiachetta/aegis-origin/segment"
)

var (
	// ErrInvalidConfiguration indicates malformed run parameters,
	// detected before any raster access.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrOutOfRange indicates cell coordinates outside the raster
	// extents.
	ErrOutOfRange = errors.New("cell coordinates out of range")

	// ErrInvalidSegment indicates an operation on a segment handle that
	// is no longer live.
	ErrInvalidSegment = errors.New("segment is not live")

	// ErrIncompatibleRaster indicates a raster whose extents or band
	// count do not match what the operation expects.
	ErrIncompatibleRaster = errors.New("incompatible raster")
)

// translateError maps subpackage errors onto the package-level kinds while
// keeping the original error reachable via errors.Unwrap/Is/As.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var cfgErr *config.ErrInvalid
	if errors.As(err, &cfgErr) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	var optErr *cluster.ErrInvalidOptions
	if errors.As(err, &optErr) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	var kindErr *distance.ErrUnknownKind
	if errors.As(err, &kindErr) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	var rangeErr *segment.ErrOutOfRange
	if errors.As(err, &rangeErr) {
		return fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}
	var segErr *segment.ErrInvalidSegment
	if errors.As(err, &segErr) {
		return fmt.Errorf("%w: %w", ErrInvalidSegment, err)
	}

	var lenErr *distance.ErrLengthMismatch
	if errors.As(err, &lenErr) {
		return fmt.Errorf("%w: %w", ErrIncompatibleRaster, err)
	}
	var extErr *raster.ErrInvalidExtent
	if errors.As(err, &extErr) {
		return fmt.Errorf("%w: %w", ErrIncompatibleRaster, err)
	}

	return err
}
