package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_AllowsWithinBurst(t *testing.T) {
	l := NewLimiter(100, 10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 5; i++ {
		if err := l.Wait(ctx, "http://agent.test/agent"); err != nil {
			t.Fatalf("wait %d failed: %v", i, err)
		}
	}
}

func TestLimiter_PerHostIsolation(t *testing.T) {
	l := NewLimiter(1000, 1000)
	l.SetEndpointRate("slow.test", 0.001, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// The fast host clears immediately.
	if err := l.Wait(ctx, "http://fast.test/agent"); err != nil {
		t.Fatalf("fast host blocked: %v", err)
	}

	// The slow host's first token passes, the second must block until the
	// context expires.
	if err := l.Wait(ctx, "http://slow.test/agent"); err != nil {
		t.Fatalf("slow host's burst token blocked: %v", err)
	}
	if err := l.Wait(ctx, "http://slow.test/agent"); err == nil {
		t.Error("slow host served a second request past its rate")
	}
}

func TestLimiter_Defaults(t *testing.T) {
	l := NewLimiter(0, 0)
	if l.defaultRate != 1 || l.defaultBurst != 5 {
		t.Errorf("zero config did not fall back to defaults: rate=%v burst=%d", l.defaultRate, l.defaultBurst)
	}
}

func TestLimiter_InvalidEndpoint(t *testing.T) {
	l := NewLimiter(1, 1)
	if err := l.Wait(context.Background(), "://not a url"); err == nil {
		t.Error("invalid endpoint accepted")
	}
}
