package redis

import (
	"context"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewClient(t *testing.T) {
	s := miniredis.RunT(t)

	ctx := context.Background()
	client, err := NewClient(ctx, Config{URL: fmt.Sprintf("redis://%s", s.Addr())})
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestNewClientPoolTuning(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClient(context.Background(), Config{
		URL:          fmt.Sprintf("redis://%s", s.Addr()),
		PoolSize:     32,
		MinIdleConns: 4,
	})
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if got := client.Options().PoolSize; got != 32 {
		t.Errorf("expected pool size 32, got %d", got)
	}
	if got := client.Options().MinIdleConns; got != 4 {
		t.Errorf("expected 4 min idle conns, got %d", got)
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), Config{URL: "://bad-url"})
	if err == nil {
		t.Fatalf("expected error for invalid URL")
	}
}

func TestNewClientPingFailure(t *testing.T) {
	s := miniredis.RunT(t)
	url := fmt.Sprintf("redis://%s", s.Addr())
	s.Close() // close before attempting to connect

	_, err := NewClient(context.Background(), Config{URL: url})
	if err == nil {
		t.Fatalf("expected ping error when server is down")
	}
}
