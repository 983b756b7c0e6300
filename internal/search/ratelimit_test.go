package search

import (
	"testing"
	"time"
)

func TestRateLimiterBucketDrains(t *testing.T) {
	rl := NewIPRateLimiter(2, time.Minute)
	if !rl.Allow("1.1.1.1") {
		t.Fatal("expected allow")
	}
	if !rl.Allow("1.1.1.1") {
		t.Fatal("expected allow")
	}
	if rl.Allow("1.1.1.1") {
		t.Fatal("expected deny")
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewIPRateLimiter(1, time.Minute)
	if !rl.Allow("1.1.1.1") {
		t.Fatal("expected allow")
	}
	if !rl.Allow("2.2.2.2") {
		t.Fatal("other clients keep their own bucket")
	}
	if rl.Allow("1.1.1.1") {
		t.Fatal("expected deny")
	}
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewIPRateLimiter(1, 10*time.Millisecond)
	if !rl.Allow("1.1.1.1") {
		t.Fatal("expected allow")
	}
	if rl.Allow("1.1.1.1") {
		t.Fatal("expected deny before refill")
	}
	time.Sleep(15 * time.Millisecond)
	if !rl.Allow("1.1.1.1") {
		t.Fatal("expected allow after refill window")
	}
}
