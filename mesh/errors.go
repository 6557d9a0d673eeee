package mesh

import "fmt"

var axisNames = [3]string{"x", "y", "z"}

// AxisName returns "x", "y" or "z"
func AxisName(axis int) string {
	if axis < 0 || axis > 2 {
		return fmt.Sprintf("axis%d", axis)
	}
	return axisNames[axis]
}

// InvalidBoundsError reports a bounding box whose lower corner is not
// strictly below the upper corner on some axis.
type InvalidBoundsError struct {
	Axis         int
	Lower, Upper float64
}

func (e *InvalidBoundsError) Error() string {
	return fmt.Sprintf("invalid bounds on %s axis: lower %g must be less than upper %g",
		AxisName(e.Axis), e.Lower, e.Upper)
}

// InvalidCountError reports a per-axis cell count below one, or one that
// pushes the lattice past MaxVertices points when Limit is set.
type InvalidCountError struct {
	Axis  int
	Count int
	Limit int
}

func (e *InvalidCountError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("invalid cell count on %s axis: %d, lattice would exceed %d vertices",
			AxisName(e.Axis), e.Count, e.Limit)
	}
	return fmt.Sprintf("invalid cell count on %s axis: %d, need at least 1",
		AxisName(e.Axis), e.Count)
}

// UnsupportedShapeError reports a cell shape request that is neither tensor
// nor simplex.
type UnsupportedShapeError struct {
	Shape string
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("unsupported cell shape %q, want tensor or simplex", e.Shape)
}

// ConsistencyError reports mesh input that violates the container invariants.
type ConsistencyError struct {
	Kind   string // "cell", "face", "edge" or "support"
	ID     int
	Reason string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("inconsistent %s %d: %s", e.Kind, e.ID, e.Reason)
}
