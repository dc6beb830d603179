package prices

import (
	"fmt"
	"time"

	"github.com/icodeforyou/spotprice-go/types"
)

type AnomalyKind string

const (
	AnomalyGap     AnomalyKind = "gap"
	AnomalyOverlap AnomalyKind = "overlap"
)

// Anomaly describes two neighbouring points whose boundaries don't line up.
type Anomaly struct {
	Kind  AnomalyKind
	Prev  types.PricePoint
	Next  types.PricePoint
	Delta time.Duration
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s of %s between %s and %s", a.Kind, a.Delta,
		a.Prev.EndDate.Format(time.RFC3339), a.Next.StartDate.Format(time.RFC3339))
}

// CheckContiguous sorts points by start date and reports every place where a
// point does not start exactly when its predecessor ends.
func CheckContiguous(points []types.PricePoint) []Anomaly {
	sorted := SortByStart(points)
	var anomalies []Anomaly
	for i := 1; i < len(sorted); i++ {
		prev, next := sorted[i-1], sorted[i]
		switch d := next.StartDate.Sub(prev.EndDate); {
		case d > 0:
			anomalies = append(anomalies, Anomaly{Kind: AnomalyGap, Prev: prev, Next: next, Delta: d})
		case d < 0:
			anomalies = append(anomalies, Anomaly{Kind: AnomalyOverlap, Prev: prev, Next: next, Delta: -d})
		}
	}
	return anomalies
}
