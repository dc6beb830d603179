package database

import (
	"context"
	"fmt"
	"time"

	"github.com/icodeforyou/spotprice-go/prices"
	"github.com/icodeforyou/spotprice-go/types"
)

type AlertRow struct {
	At             time.Time
	Point          types.PricePoint
	Classification prices.Classification
	Limits         prices.PriceLimits
	Message        string
}

func (d *Database) SaveAlert(ctx context.Context, a prices.Alert) error {
	_, err := d.write.ExecContext(ctx, `
		INSERT INTO alert (at, start_date, end_date, price, classification, lower_limit, upper_limit, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		formatTimestamp(a.At),
		formatTimestamp(a.Point.StartDate),
		formatTimestamp(a.Point.EndDate),
		a.Point.Price,
		string(a.Classification),
		a.Limits.Lower,
		a.Limits.Upper,
		a.Message())
	if err != nil {
		return fmt.Errorf("saving alert: %w", err)
	}
	return nil
}

// GetAlerts returns the most recent alerts, newest first.
func (d *Database) GetAlerts(ctx context.Context, limit int) ([]AlertRow, error) {
	if limit < 1 {
		limit = 10
	}

	rows, err := d.read.QueryContext(ctx, `
		SELECT at, start_date, end_date, price, classification, lower_limit, upper_limit, message
		FROM alert
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching alerts: %w", err)
	}
	defer rows.Close()

	var alerts []AlertRow
	for rows.Next() {
		var r AlertRow
		var at, start, end, class string
		if err := rows.Scan(&at, &start, &end, &r.Point.Price, &class,
			&r.Limits.Lower, &r.Limits.Upper, &r.Message); err != nil {
			return nil, fmt.Errorf("scanning alert row: %w", err)
		}
		if r.At, err = parseTimestamp(at); err != nil {
			return nil, fmt.Errorf("parsing alert timestamp: %w", err)
		}
		if r.Point.StartDate, err = parseTimestamp(start); err != nil {
			return nil, fmt.Errorf("parsing alert start date: %w", err)
		}
		if r.Point.EndDate, err = parseTimestamp(end); err != nil {
			return nil, fmt.Errorf("parsing alert end date: %w", err)
		}
		r.Classification = prices.Classification(class)
		alerts = append(alerts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading alert rows: %w", err)
	}

	return alerts, nil
}

func (d *Database) PurgeAlerts(ctx context.Context, retentionDays int) error {
	return d.purgeBefore(ctx, "alert", "at", retentionDays)
}
