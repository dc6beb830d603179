package porssisahko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/icodeforyou/spotprice-go/hours"
	"github.com/icodeforyou/spotprice-go/types"
)

const (
	DefaultBaseUrl = "https://api.porssisahko.net/v1"
	DefaultTimeout = 10 * time.Second
)

type rawPrice struct {
	Price     *float64 `json:"price"`
	StartDate *string  `json:"startDate"`
	EndDate   *string  `json:"endDate"`
}

type rawLatestPrices struct {
	Prices *[]rawPrice `json:"prices"`
}

type Porssisahko struct {
	logger  *slog.Logger
	baseUrl string
	client  *http.Client
}

func New(baseUrl string, timeout time.Duration) *Porssisahko {
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Porssisahko{
		logger:  slog.Default().With("module", "porssisahko"),
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchLatest does a single request for the latest published prices. Points
// are returned in the order of the response, timestamps converted to UTC.
func (p *Porssisahko) FetchLatest(ctx context.Context) ([]types.PricePoint, error) {
	url := p.baseUrl + "/latest-prices.json"
	p.logger.Debug("fetching latest prices", slog.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to fetch prices: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var body rawLatestPrices
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &FormatError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	points, err := toPricePoints(body)
	if err != nil {
		return nil, &FormatError{Err: err}
	}

	p.logger.Debug("latest prices fetched", slog.Int("count", len(points)))
	return points, nil
}

func toPricePoints(body rawLatestPrices) ([]types.PricePoint, error) {
	if body.Prices == nil {
		return nil, errors.New(`missing "prices" in response`)
	}

	raws := *body.Prices
	points := make([]types.PricePoint, 0, len(raws))
	for i, raw := range raws {
		if raw.Price == nil || raw.StartDate == nil || raw.EndDate == nil {
			return nil, fmt.Errorf("price entry %d is missing price, startDate or endDate", i)
		}

		start, err := hours.ParseIso(*raw.StartDate)
		if err != nil {
			return nil, fmt.Errorf("price entry %d startDate: %w", i, err)
		}
		end, err := hours.ParseIso(*raw.EndDate)
		if err != nil {
			return nil, fmt.Errorf("price entry %d endDate: %w", i, err)
		}
		if !start.Before(end) {
			return nil, fmt.Errorf("price entry %d starts at %s but ends at %s", i, *raw.StartDate, *raw.EndDate)
		}

		points = append(points, types.PricePoint{
			Price:     *raw.Price,
			StartDate: start,
			EndDate:   end,
		})
	}

	return points, nil
}
