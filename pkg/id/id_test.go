package id

import (
	"sync/atomic"
	"testing"
	"time"
)

func pinClock(t *testing.T, ms int64) *atomic.Int64 {
	t.Helper()
	clock := &atomic.Int64{}
	clock.Store(ms)
	NowMs = clock.Load
	t.Cleanup(func() { NowMs = func() int64 { return time.Now().UnixMilli() } })
	return clock
}

func TestOrderingMonotonic(t *testing.T) {
	pinClock(t, 1000)
	g := NewGenerator()

	a := g.Next()
	b := g.Next()
	if a.Compare(b) >= 0 {
		t.Fatalf("expected a<b")
	}
	if b.Seq() != a.Seq()+1 {
		t.Fatalf("seq: a=%d b=%d", a.Seq(), b.Seq())
	}
	if !a.Time().Equal(time.UnixMilli(1000)) {
		t.Fatalf("time = %v", a.Time())
	}
}

func TestClockRegressionGuard(t *testing.T) {
	clock := pinClock(t, 1000)
	g := NewGenerator()

	a := g.Next()
	clock.Store(900)
	b := g.Next()
	if a.Compare(b) >= 0 {
		t.Fatalf("expected b>a despite clock regression")
	}
}

func TestSequenceExhaustionWaitsNextMs(t *testing.T) {
	clock := pinClock(t, 2000)
	g := NewGenerator()
	g.lastMs = 2000
	g.seq = ^uint32(0)

	done := make(chan ID)
	go func() { done <- g.Next() }()

	time.AfterFunc(10*time.Millisecond, func() { clock.Store(2001) })

	select {
	case got := <-done:
		if got.Seq() != 0 || got.Time().UnixMilli() != 2001 {
			t.Fatalf("got seq=%d ms=%d", got.Seq(), got.Time().UnixMilli())
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting for sequence rollover")
	}
}

func TestParseRoundTrip(t *testing.T) {
	g := NewGenerator()
	a := g.Next()
	b, err := Parse(a.String())
	if err != nil || b != a {
		t.Fatalf("Parse(%s) = %s, %v", a, b, err)
	}
	if len(a.Short()) != 8 {
		t.Fatalf("short = %q", a.Short())
	}
	if _, err := Parse("abc"); err == nil {
		t.Fatalf("expected length error")
	}
	if _, err := Parse("zzzzzzzzzzzzzzzzzzzzzzzz"); err == nil {
		t.Fatalf("expected hex error")
	}
}
