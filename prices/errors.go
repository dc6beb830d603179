package prices

import (
	"fmt"
	"time"
)

// NoCurrentPriceError is returned when no price point covers the reference instant.
type NoCurrentPriceError struct {
	At time.Time
}

func (e *NoCurrentPriceError) Error() string {
	return fmt.Sprintf("no current price found for %s", e.At.UTC().Format(time.RFC3339))
}

// NoNextPriceError is returned when no price point starts where the current one ends.
type NoNextPriceError struct {
	After time.Time
}

func (e *NoNextPriceError) Error() string {
	return fmt.Sprintf("no next price found starting at %s", e.After.UTC().Format(time.RFC3339))
}
