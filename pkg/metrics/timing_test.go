package metrics

import (
	"testing"
	"time"
)

func TestTimingMetricRecord(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)
	m.Record(0)

	s := m.Stats()
	if s.Count != 3 {
		t.Fatalf("Count = %d", s.Count)
	}
	if s.MaxMs != 4 {
		t.Errorf("MaxMs = %v", s.MaxMs)
	}
	if s.MinMs <= 0 || s.MinMs > 0.001 {
		t.Errorf("MinMs = %v, want the 1ns floor", s.MinMs)
	}

	m.Reset()
	if m.Count() != 0 || m.Stats().MaxMs != 0 {
		t.Errorf("Reset left %+v", m.Stats())
	}
}

func TestTimingMetricDisabled(t *testing.T) {
	SetEnabled(false)
	t.Cleanup(func() { SetEnabled(true) })

	m := newTimingMetric("off")
	Timer(m)()
	if m.Count() != 0 {
		t.Fatal("disabled metric recorded")
	}
}

func TestAllTimingStatsSkipsEmpty(t *testing.T) {
	SetEnabled(true)
	ResetAll()
	t.Cleanup(ResetAll)

	Flatten.Record(time.Millisecond)
	stats := AllTimingStats()
	if len(stats) != 1 || stats[0].Name != "flatten" {
		t.Fatalf("stats = %+v", stats)
	}
}
