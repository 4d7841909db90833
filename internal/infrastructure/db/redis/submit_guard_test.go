package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// flagClient answers the two commands SubmitGuard issues from an in-memory map.
type flagClient struct {
	redis.UniversalClient
	mu   sync.Mutex
	vals map[string]string
}

func (f *flagClient) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vals[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.vals[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *flagClient) EvalSha(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.vals[keys[0]] == args[0] {
		delete(f.vals, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestSubmitGuard_ReleaseOnlyOwnFlag(t *testing.T) {
	client := &flagClient{vals: make(map[string]string)}
	g := NewSubmitGuard(client, time.Second)
	ctx := context.Background()

	first, ok, err := g.Acquire(ctx, "checkout:s1")
	if err != nil || !ok || first == "" {
		t.Fatalf("first acquire: token=%q ok=%v err=%v", first, ok, err)
	}
	if _, ok, _ := g.Acquire(ctx, "checkout:s1"); ok {
		t.Fatalf("flag is held; second acquire must fail")
	}

	// The first holder's TTL lapsed and another request took the flag.
	client.vals[submitKey("checkout:s1")] = "newer-holder"
	if err := g.Release(ctx, "checkout:s1", first); err != nil {
		t.Fatalf("release: %v", err)
	}
	if client.vals[submitKey("checkout:s1")] != "newer-holder" {
		t.Fatalf("stale release must not drop the newer holder's flag")
	}

	if err := g.Release(ctx, "checkout:s1", "newer-holder"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, held := client.vals[submitKey("checkout:s1")]; held {
		t.Fatalf("holder's own release must drop the flag")
	}
}
