package influxdb

import (
	"context"
	"fmt"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePoints queues points for the next batch. A full batch is sent
// immediately and its error returned.
func (c *Client) WritePoints(ctx context.Context, points ...*write.Point) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if err := c.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// Flush sends all queued points.
func (c *Client) Flush(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if err := c.writeAPI.Flush(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// Query runs a Flux query against the configured organisation.
//
// The caller must Close the returned result.
func (c *Client) Query(ctx context.Context, flux string) (*api.QueryTableResult, error) {
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}
	result, err := c.queryAPI.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	return result, nil
}
