package analytics

import (
	"context"
	"testing"
)

func TestDisabledTrackerIsInert(t *testing.T) {
	tracker, err := NewTracker(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}
	defer tracker.Close()

	if tracker.Enabled() {
		t.Error("tracker should report disabled")
	}
	if err := tracker.RecordUsage(context.Background(), "p1", true, 100, 50); err != nil {
		t.Errorf("disabled RecordUsage must not fail: %v", err)
	}

	stats, err := tracker.Stats(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalUses != 0 || stats.SuccessfulUses != 0 {
		t.Errorf("disabled tracker must report zeroed stats, got %+v", stats)
	}
}

func TestRecordAndAggregate(t *testing.T) {
	tracker, err := NewTracker(t.TempDir(), true)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}
	defer tracker.Close()

	ctx := context.Background()
	if err := tracker.RecordUsage(ctx, "p1", true, 100, 40); err != nil {
		t.Fatalf("RecordUsage failed: %v", err)
	}
	if err := tracker.RecordUsage(ctx, "p1", false, 300, 60); err != nil {
		t.Fatalf("RecordUsage failed: %v", err)
	}
	if err := tracker.RecordUsage(ctx, "other", true, 10, 10); err != nil {
		t.Fatalf("RecordUsage failed: %v", err)
	}

	stats, err := tracker.Stats(ctx, "p1")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalUses != 2 {
		t.Errorf("expected 2 uses, got %d", stats.TotalUses)
	}
	if stats.SuccessfulUses != 1 {
		t.Errorf("expected 1 successful use, got %d", stats.SuccessfulUses)
	}
	if stats.AvgCompletionTimeMs != 200 {
		t.Errorf("expected avg completion 200ms, got %v", stats.AvgCompletionTimeMs)
	}
	if stats.AvgTokens != 50 {
		t.Errorf("expected avg tokens 50, got %v", stats.AvgTokens)
	}
}

func TestStatsForUnknownPrompt(t *testing.T) {
	tracker, err := NewTracker(t.TempDir(), true)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}
	defer tracker.Close()

	stats, err := tracker.Stats(context.Background(), "never-used")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalUses != 0 {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
}
