package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/Abinayanafaiq/BotDating/internal/repo/redis"
)

func TestLimiterBlocksOnBurstWindow(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	limiter := NewLimiter(redrepo.NewRateRepo(client), 100, 2)
	ctx := context.Background()
	userID := int64(42)

	for i := 0; i < 2; i++ {
		retryAfter, allowed, err := limiter.AllowSearch(ctx, userID)
		if err != nil {
			t.Fatalf("allow search #%d: %v", i+1, err)
		}
		if !allowed || retryAfter != 0 {
			t.Fatalf("unexpected result on search #%d: allowed=%v retry_after=%d", i+1, allowed, retryAfter)
		}
	}

	retryAfter, allowed, err := limiter.AllowSearch(ctx, userID)
	if err != nil {
		t.Fatalf("allow search #3: %v", err)
	}
	if allowed || retryAfter <= 0 {
		t.Fatalf("expected block with positive retry, got allowed=%v retry_after=%d", allowed, retryAfter)
	}

	current, err := limiter.RetryAfterSearch(ctx, userID)
	if err != nil {
		t.Fatalf("retry after state: %v", err)
	}
	if current <= 0 {
		t.Fatalf("expected positive retry state, got %d", current)
	}

	mr.FastForward(11 * time.Second)

	retryAfter, allowed, err = limiter.AllowSearch(ctx, userID)
	if err != nil {
		t.Fatalf("allow search after burst window: %v", err)
	}
	if !allowed || retryAfter != 0 {
		t.Fatalf("expected search to pass after window, got allowed=%v retry_after=%d", allowed, retryAfter)
	}
}

func TestLimiterBlocksOnMinuteWindow(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	limiter := NewLimiter(redrepo.NewRateRepo(client), 3, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, allowed, err := limiter.AllowSearch(ctx, 7); err != nil || !allowed {
			t.Fatalf("search #%d should pass: allowed=%v err=%v", i+1, allowed, err)
		}
	}
	retryAfter, allowed, err := limiter.AllowSearch(ctx, 7)
	if err != nil {
		t.Fatalf("allow search #4: %v", err)
	}
	if allowed || retryAfter <= 0 || retryAfter > 60 {
		t.Fatalf("expected minute block, got allowed=%v retry_after=%d", allowed, retryAfter)
	}

	// Other users are unaffected.
	if _, allowed, err := limiter.AllowSearch(ctx, 8); err != nil || !allowed {
		t.Fatalf("other user should pass: allowed=%v err=%v", allowed, err)
	}
}

func TestLimiterWithoutWindowsAlwaysAllows(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	limiter := NewLimiter(redrepo.NewRateRepo(client), 0, -1)
	for i := 0; i < 50; i++ {
		if _, allowed, err := limiter.AllowSearch(context.Background(), 1); err != nil || !allowed {
			t.Fatalf("search #%d should pass: allowed=%v err=%v", i+1, allowed, err)
		}
	}
}

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return mr, client
}
