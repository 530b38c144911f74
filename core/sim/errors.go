package sim

import "fmt"

// InvalidConfigError reports a non-positive simulation config field.
type InvalidConfigError struct {
	Field string
	Value int
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("config: %s must be positive, got %d", e.Field, e.Value)
}
