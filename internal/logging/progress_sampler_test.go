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
	if !s.ShouldLog(50, "recon") {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestProgressSampler_PhaseChange(t *testing.T) {
	s := NewProgressSampler(5)
	if !s.ShouldLog(0, "index") {
		t.Error("first phase should log")
	}
	if s.ShouldLog(0, "index") {
		t.Error("same phase and percent should not log again")
	}
	if !s.ShouldLog(0, "recon") {
		t.Error("different phase should log")
	}
	if s.lastPhase != "recon" {
		t.Errorf("lastPhase = %q, want recon", s.lastPhase)
	}
}

func TestProgressSampler_PercentBuckets(t *testing.T) {
	s := NewProgressSampler(5)
	steps := []struct {
		percent float64
		want    bool
	}{
		{0, true},
		{3, false},
		{5, true},
		{7, false},
		{10, true},
		{100, true},
		{105, false},
	}
	for _, step := range steps {
		if got := s.ShouldLog(step.percent, "recon"); got != step.want {
			t.Fatalf("ShouldLog(%v) = %v, want %v", step.percent, got, step.want)
		}
	}
}

func TestProgressSampler_NegativePercent(t *testing.T) {
	s := NewProgressSampler(5)
	if !s.ShouldLog(-1, "recon") {
		t.Error("first call should log even with negative percent")
	}
	if s.ShouldLog(-1, "recon") {
		t.Error("negative percent should not trigger bucket logging")
	}
}

func TestProgressSampler_ShouldLogCount(t *testing.T) {
	s := NewProgressSampler(25)
	if !s.ShouldLogCount(0, 8, "recon") {
		t.Fatal("first count should log")
	}
	if s.ShouldLogCount(1, 8, "recon") {
		t.Fatal("12.5% should stay in the first bucket")
	}
	if !s.ShouldLogCount(2, 8, "recon") {
		t.Fatal("25% should log")
	}
	if !s.ShouldLogCount(8, 8, "recon") {
		t.Fatal("completion should log")
	}
	if s.ShouldLogCount(3, 0, "recon") {
		t.Fatal("unknown total should not log without a phase change")
	}
}

func TestProgressSampler_Reset(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(50, "recon")
	s.Reset()
	if s.lastPhase != "" || s.lastBucket != -1 {
		t.Fatalf("state not cleared: phase=%q bucket=%d", s.lastPhase, s.lastBucket)
	}
	if !s.ShouldLog(50, "recon") {
		t.Error("should log after reset")
	}
}
