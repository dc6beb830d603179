package types

import (
	"context"
	"time"
)

type PricePoint struct {
	Price     float64   `json:"price"`     // Price in c/kWh including VAT
	StartDate time.Time `json:"startDate"` // Inclusive, UTC
	EndDate   time.Time `json:"endDate"`   // Exclusive, UTC
}

// Contains reports whether t is within the half-open interval [StartDate, EndDate).
func (p PricePoint) Contains(t time.Time) bool {
	return !t.Before(p.StartDate) && t.Before(p.EndDate)
}

type PricePointProvider interface {
	FetchLatest(ctx context.Context) ([]PricePoint, error)
}
