package influxdb

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/config"
)

func TestClientOptionsDefaults(t *testing.T) {
	opts := clientOptions(config.InfluxDBConfig{})
	if got := opts.BatchSize(); got != uint(defaultBatchSize) {
		t.Errorf("BatchSize() = %d, want %d", got, defaultBatchSize)
	}
	if got := opts.FlushInterval(); got != uint(defaultFlushInterval*millisecondsPerSecond) {
		t.Errorf("FlushInterval() = %d, want %d", got, defaultFlushInterval*millisecondsPerSecond)
	}

	opts = clientOptions(config.InfluxDBConfig{BatchSize: 10, FlushInterval: 2})
	if got := opts.BatchSize(); got != 10 {
		t.Errorf("BatchSize() = %d, want 10", got)
	}
	if got := opts.FlushInterval(); got != 2000 {
		t.Errorf("FlushInterval() = %d, want 2000", got)
	}
}

func TestConnectUnreachable(t *testing.T) {
	// Reserve a port and release it so nothing is listening there.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	if err := l.Close(); err != nil {
		t.Fatalf("close listener: %v", err)
	}

	_, err = Connect(context.Background(), config.InfluxDBConfig{
		URL:    "http://" + addr,
		Org:    "graylogic",
		Bucket: "registry",
	})
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestDisconnectedClient(t *testing.T) {
	c := &Client{}
	ctx := context.Background()

	if c.IsConnected() {
		t.Error("IsConnected() = true for zero client")
	}
	if err := c.HealthCheck(ctx); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
	if err := c.WritePoints(ctx, write.NewPointWithMeasurement("m")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("WritePoints() error = %v, want ErrNotConnected", err)
	}
	if err := c.Flush(ctx); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Flush() error = %v, want ErrNotConnected", err)
	}
	if _, err := c.Query(ctx, "buckets()"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Query() error = %v, want ErrNotConnected", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
