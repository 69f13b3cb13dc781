package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestManager_InvalidURIIsConnectionError(t *testing.T) {
	m := NewManager(Config{URI: "http://not-mongo", Name: "users", ConnectTimeout: 200 * time.Millisecond})

	_, err := m.Database(context.Background())
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}

func TestManager_DialFailureIsNotCached(t *testing.T) {
	calls := 0
	m := NewManager(Config{URI: "mongodb://127.0.0.1:27017", Name: "users"})
	m.dial = func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
		calls++
		return nil, errors.New("server selection timeout")
	}

	for i := 0; i < 2; i++ {
		if _, err := m.Database(context.Background()); !errors.Is(err, ErrConnection) {
			t.Fatalf("attempt %d: expected ErrConnection, got %v", i, err)
		}
	}

	if calls != 2 {
		t.Fatalf("expected a new attempt per call after failure, got %d dials", calls)
	}
}

func TestManager_ReusesHandle(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	m := NewManager(Config{URI: "mongodb://127.0.0.1:27017", Name: "users"})
	m.dial = func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
		mu.Lock()
		calls++
		mu.Unlock()

		// Connect does not hit the network; only Ping would.
		return mongo.Connect(ctx, opts)
	}
	t.Cleanup(func() { _ = m.Disconnect(context.Background()) })

	var wg sync.WaitGroup
	handles := make([]*mongo.Database, 8)

	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			db, err := m.Database(context.Background())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			handles[i] = db
		}(i)
	}
	wg.Wait()

	if calls != 1 {
		t.Fatalf("expected a single dial for concurrent first use, got %d", calls)
	}

	for i, h := range handles {
		if h != handles[0] {
			t.Fatalf("handle %d differs from the cached one", i)
		}
	}

	if handles[0].Name() != "users" {
		t.Fatalf("unexpected database name %q", handles[0].Name())
	}
}
