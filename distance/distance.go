package distance

import (
	"fmt"
	"math"
	"strings"
)

// Kind identifies a distance metric family.
type Kind int

const (
	// Euclidean is the L2 distance over per-band vectors.
	Euclidean Kind = iota
	// SquaredEuclidean is the squared L2 distance. Cheaper than Euclidean
	// and order-equivalent for nearest-center assignment.
	SquaredEuclidean
	// Manhattan is the L1 distance.
	Manhattan
	// Angular is the angle (in radians) between the two vectors.
	Angular
)

func (k Kind) String() string {
	switch k {
	case Euclidean:
		return "Euclidean"
	case SquaredEuclidean:
		return "SquaredEuclidean"
	case Manhattan:
		return "Manhattan"
	case Angular:
		return "Angular"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// ParseKind resolves a metric name (case-insensitive) to its Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "euclidean", "l2":
		return Euclidean, nil
	case "squaredeuclidean", "squared-euclidean", "l2squared":
		return SquaredEuclidean, nil
	case "manhattan", "l1":
		return Manhattan, nil
	case "angular", "angle":
		return Angular, nil
	default:
		return 0, &ErrUnknownKind{Name: name}
	}
}

// ErrUnknownKind indicates an unrecognized metric name.
type ErrUnknownKind struct {
	Name string
}

func (e *ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown distance kind: %q", e.Name)
}

// ErrLengthMismatch indicates vectors of differing band counts.
type ErrLengthMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("vector length mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Func computes the distance between two spectral vectors of equal length.
// All built-in metrics are symmetric, non-negative and zero for equal inputs.
type Func func(a, b []float64) (float64, error)

// Provider returns the distance function for the given kind.
func Provider(k Kind) (Func, error) {
	switch k {
	case Euclidean:
		return EuclideanDistance, nil
	case SquaredEuclidean:
		return SquaredEuclideanDistance, nil
	case Manhattan:
		return ManhattanDistance, nil
	case Angular:
		return AngularDistance, nil
	default:
		return nil, fmt.Errorf("unsupported distance kind: %v", k)
	}
}

// EuclideanDistance computes the L2 distance between a and b.
func EuclideanDistance(a, b []float64) (float64, error) {
	d, err := SquaredEuclideanDistance(a, b)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(d), nil
}

// SquaredEuclideanDistance computes the squared L2 distance between a and b.
func SquaredEuclideanDistance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, &ErrLengthMismatch{Expected: len(a), Actual: len(b)}
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum, nil
}

// ManhattanDistance computes the L1 distance between a and b.
func ManhattanDistance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, &ErrLengthMismatch{Expected: len(a), Actual: len(b)}
	}
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum, nil
}

// AngularDistance computes the angle in radians between a and b.
// A zero vector has no direction; its angle to anything is defined as zero.
func AngularDistance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, &ErrLengthMismatch{Expected: len(a), Actual: len(b)}
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// Guard against rounding pushing the cosine out of [-1, 1].
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos), nil
}

// Aggregate is the read-only statistical view of a segment, sufficient for
// aggregate-level distance computations.
type Aggregate interface {
	// Bands returns the number of spectral bands.
	Bands() int
	// MeanVector writes the per-band mean into dst and returns it,
	// allocating when dst is too small.
	MeanVector(dst []float64) []float64
}

// SegmentToVector computes the distance between a segment's aggregate mean
// and a spectral vector.
func SegmentToVector(f Func, s Aggregate, v []float64) (float64, error) {
	return f(s.MeanVector(nil), v)
}

// SegmentToSegment computes the distance between two segments' aggregate
// means.
func SegmentToSegment(f Func, a, b Aggregate) (float64, error) {
	return f(a.MeanVector(nil), b.MeanVector(nil))
}
