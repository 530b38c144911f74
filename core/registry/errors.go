package registry

import "fmt"

// OutOfBoundsError reports a coordinate outside the grid, together with the
// operation that attempted it (e.g. "add driver", "add rider pickup").
type OutOfBoundsError struct {
	X, Y    int
	Context string
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s: position (%d, %d) is outside grid bounds", e.Context, e.X, e.Y)
}

// NotFoundError reports a lookup miss for a given entity kind and id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}
