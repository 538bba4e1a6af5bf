//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRedisStoreIntegration(t *testing.T) {
	addr := os.Getenv("TILEGRID_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := NewRedisStore(ctx, RedisConfig{Addr: addr, Prefix: "tilegrid-test-" + uuid.NewString() + ":"})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestMongoStoreIntegration(t *testing.T) {
	uri := os.Getenv("TILEGRID_MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "tilegrid_test", Collection: "projects_" + uuid.NewString()})
	if err != nil {
		t.Skipf("mongo unavailable: %v", err)
	}
	defer func() {
		_ = s.coll.Drop(context.Background())
		s.Close()
	}()
	testStore(t, s)
}
