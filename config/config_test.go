package config

import "testing"

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() should validate cleanly: %v", err)
	}
}

func TestNewAppliesOptions(t *testing.T) {
	c, err := New(WithNPruning(5), WithFPS(30))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if c.NPruning != 5 || c.FPS != 30 {
		t.Errorf("options not applied: %+v", c)
	}
}

func TestNewRejectsNegativeNPruning(t *testing.T) {
	_, err := New(WithNPruning(-1))
	if err == nil {
		t.Fatal("expected ConfigError for negative NPruning")
	}
	var cfgErr *ConfigError
	if !asConfigError(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
}

func TestNewRejectsZeroBins(t *testing.T) {
	_, err := New(WithColorHistBins(0))
	if err == nil {
		t.Fatal("expected ConfigError for zero bins")
	}
}

func TestHistUpdateEveryFrames(t *testing.T) {
	c := Default()
	if got := c.HistUpdateEveryFrames(); got != 40 {
		t.Errorf("HistUpdateEveryFrames = %d, want 40", got)
	}
}

func TestLoadINIMissingFile(t *testing.T) {
	if _, err := LoadINI("/nonexistent/path.ini"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func asConfigError(err error, target **ConfigError) bool {
	ce, ok := err.(*ConfigError)
	if ok {
		*target = ce
	}
	return ok
}
