package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

// startMiniredis runs an in-process redis and returns a client wired to it.
// The miniredis handle is returned too so tests can advance its TTL clock.
func startMiniredis(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return client, srv
}
