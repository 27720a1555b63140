package ratelimit

import (
	"os"
	"testing"
	"time"

	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestLimiterExhaustsBucket(t *testing.T) {
	l := New(Config{MaxRequestsPerMinute: 2})
	defer l.Stop()

	now := time.Now()
	for i := 0; i < 2; i++ {
		if !l.allow("10.0.0.1", now) {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
	}
	if l.allow("10.0.0.1", now) {
		t.Error("request beyond bucket allowed, want denied")
	}
}

func TestLimiterRefills(t *testing.T) {
	l := New(Config{MaxRequestsPerMinute: 2, Window: 20 * time.Millisecond})
	defer l.Stop()

	now := time.Now()
	l.allow("10.0.0.1", now)
	l.allow("10.0.0.1", now)

	// One refill interval restores one token.
	later := now.Add(10 * time.Millisecond)
	if !l.allow("10.0.0.1", later) {
		t.Error("request after refill denied, want allowed")
	}
	if l.allow("10.0.0.1", later) {
		t.Error("second request after single refill allowed, want denied")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := New(Config{MaxRequestsPerMinute: 1})
	defer l.Stop()

	now := time.Now()
	if !l.allow("10.0.0.1", now) {
		t.Fatal("first client denied")
	}
	if !l.allow("10.0.0.2", now) {
		t.Error("second client denied, want independent bucket")
	}
	if l.allow("10.0.0.1", now) {
		t.Error("drained client allowed")
	}
}
