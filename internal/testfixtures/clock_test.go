package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Current())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2024, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)

	updated := clock.Advance(90 * time.Minute)
	if !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(start.Add(2 * time.Hour))
	if got := clock.Current(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("expected %v, got %v", start.Add(2*time.Hour), got)
	}
}

func TestClockAutoAdvance(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	clock := NewClock(start)
	clock.AutoAdvance(time.Second)
	nowFn := clock.NowFunc()

	if got := nowFn(); !got.Equal(start) {
		t.Fatalf("expected first reading %v, got %v", start, got)
	}
	if got := nowFn(); !got.Equal(start.Add(time.Second)) {
		t.Fatalf("expected second reading %v, got %v", start.Add(time.Second), got)
	}
	if got := clock.Current(); !got.Equal(start.Add(2 * time.Second)) {
		t.Fatalf("Current should not advance, got %v", got)
	}

	clock.AutoAdvance(0)
	first, second := clock.Now(), clock.Now()
	if !first.Equal(second) {
		t.Fatalf("expected frozen clock, got %v then %v", first, second)
	}
}
