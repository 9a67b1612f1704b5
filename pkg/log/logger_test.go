package log

import (
	"context"
	"testing"
)

func TestTestLoggerCapturesRecords(t *testing.T) {
	tl, _ := NewTestLogger(LevelDebug)

	tl.Info("fit complete", SystemSizeKey, 4, LambdaKey, 1.0)
	tl.Debug("query data rebound", PointsKey, 2)

	if !tl.ContainsMessage("fit complete") {
		t.Error("captured output missing the info record")
	}
	if !tl.ContainsField(SystemSizeKey, float64(4)) {
		t.Errorf("captured output missing %s", SystemSizeKey)
	}
	if !tl.ContainsField(LambdaKey, float64(1)) {
		t.Errorf("captured output missing %s", LambdaKey)
	}

	entries, err := tl.GetLogEntries()
	if err != nil {
		t.Fatalf("GetLogEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("captured %d entries, want 2", len(entries))
	}
	if entries[0]["level"] != "INFO" || entries[1]["level"] != "DEBUG" {
		t.Errorf("levels = %v, %v", entries[0]["level"], entries[1]["level"])
	}

	tl.Clear()
	if entries, _ := tl.GetLogEntries(); len(entries) != 0 {
		t.Errorf("Clear left %d entries behind", len(entries))
	}
}

func TestTestLoggerLevelGating(t *testing.T) {
	tl, _ := NewTestLogger(LevelWarn)

	tl.Debug("below threshold")
	tl.Info("below threshold")
	tl.Warn("at threshold")
	tl.Error("above threshold")

	if tl.ContainsMessage("below threshold") {
		t.Error("records below the minimum level were captured")
	}
	if !tl.ContainsMessage("at threshold") || !tl.ContainsMessage("above threshold") {
		t.Error("records at or above the minimum level were dropped")
	}
	if tl.Enabled(context.Background(), LevelDebug) {
		t.Error("Enabled(LevelDebug) = true with a warn-level logger")
	}
	if !tl.Enabled(context.Background(), LevelError) {
		t.Error("Enabled(LevelError) = false with a warn-level logger")
	}
}

func TestTestLoggerWithInheritsFields(t *testing.T) {
	tl, _ := NewTestLogger(LevelDebug)

	child := tl.With(ModelNameKey, "Nystrom")
	child.Info("fit complete", OperationKey, "fit")

	if !tl.ContainsField(ModelNameKey, "Nystrom") {
		t.Errorf("child record missing inherited %s", ModelNameKey)
	}
	if !tl.ContainsField(OperationKey, "fit") {
		t.Errorf("child record missing %s", OperationKey)
	}
}

func TestSetLoggerProvider(t *testing.T) {
	provider, _ := NewTestLoggerProvider(LevelDebug)
	SetLoggerProvider(provider)
	defer SetLoggerProvider(&slogProvider{})

	GetLoggerWithName("density.nystrom").Info("fit complete")

	captured := provider.GetLogger().(*TestLogger)
	if !captured.ContainsMessage("fit complete") {
		t.Error("provider-issued logger did not write into the capture buffer")
	}
	if !captured.ContainsField(ComponentKey, "density.nystrom") {
		t.Errorf("named logger record missing %s", ComponentKey)
	}

	// Raising the minimum level must silence lower records.
	captured.Clear()
	provider.SetLevel(LevelError)
	GetLogger().Info("suppressed")
	if captured.ContainsMessage("suppressed") {
		t.Error("info record survived an error-level provider")
	}
}
