package logging

import "testing"

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)

	steps := []struct {
		label string
		done  int64
		total int64
		want  bool
	}{
		{"db1", 0, 8, true},
		{"db1", 1, 8, false},
		{"db1", 2, 8, true},
		{"db1", 3, 8, false},
		{"db1", 8, 8, true},
		{"db2", 0, 4, true},
		{"db2", 0, 0, false},
	}
	for i, step := range steps {
		if got := s.ShouldLog(step.label, step.done, step.total); got != step.want {
			t.Fatalf("step %d (%s %d/%d): got %v want %v", i, step.label, step.done, step.total, got, step.want)
		}
	}
}

func TestProgressSamplerDefaultsAndNil(t *testing.T) {
	if s := NewProgressSampler(0); s.bucketSize != 10 {
		t.Fatalf("bucketSize = %v, want 10", s.bucketSize)
	}
	var s *ProgressSampler
	if !s.ShouldLog("db1", 1, 2) {
		t.Fatal("nil sampler should always log")
	}
	s.Reset()
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(50)
	s.ShouldLog("db1", 1, 1)
	s.Reset()
	if !s.ShouldLog("db1", 1, 1) {
		t.Fatal("expected log after reset")
	}
}
