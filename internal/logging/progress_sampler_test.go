package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 5},
		{"default bucket size for negative", -1, 5},
		{"custom bucket size", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "uploading") {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestProgressSampler_PhaseChange(t *testing.T) {
	s := NewProgressSampler(5)

	if !s.ShouldLog(0, "analyzing") {
		t.Error("first phase should log")
	}
	if s.ShouldLog(0, "analyzing") {
		t.Error("same phase and percent should not log again")
	}
	if !s.ShouldLog(0, " uploading ") {
		t.Error("different phase should log")
	}
	if s.lastPhase != "uploading" {
		t.Errorf("lastPhase = %q, want uploading", s.lastPhase)
	}
}

func TestProgressSampler_PercentBuckets(t *testing.T) {
	s := NewProgressSampler(10)
	steps := []struct {
		percent float64
		want    bool
	}{
		{0, true},
		{4.9, false},
		{10, true},
		{19.9, false},
		{55, true},
		{54, false},
		{99.9, true},
		{100, true},
		{100, false},
		{-1, false},
	}
	for i, step := range steps {
		if got := s.ShouldLog(step.percent, "uploading"); got != step.want {
			t.Fatalf("step %d percent %.1f: got %v want %v", i, step.percent, got, step.want)
		}
	}
}

func TestProgressSampler_Reset(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(50, "uploading")
	s.Reset()
	if s.lastPhase != "" || s.lastBucket != -1 {
		t.Fatalf("reset left state: phase=%q bucket=%d", s.lastPhase, s.lastBucket)
	}
	if !s.ShouldLog(50, "uploading") {
		t.Fatal("expected log after reset")
	}
}
