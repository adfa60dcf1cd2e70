// Package config holds the construction parameters for the MHT engine, in
// the functional-options idiom: a Default() baseline plus With* options,
// validated once at construction time.
package config

import (
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// ConfigError reports a parameter that failed validation at construction
// time. It is fatal: callers must not proceed with an engine built from an
// invalid Config.
type ConfigError struct {
	Field string
	cause error
}

func (e *ConfigError) Error() string {
	return "config: invalid " + e.Field + ": " + e.cause.Error()
}

func (e *ConfigError) Unwrap() error { return e.cause }

func newConfigError(field string, cause error) *ConfigError {
	return &ConfigError{Field: field, cause: cause}
}

// TrackerWeights gives the per-auxiliary-tracker weighting applied during
// live-branch gating, in order KCF, MedianFlow, MIL.
type TrackerWeights struct {
	KCF        float64
	MedianFlow float64
	MIL        float64
}

// Config bundles every tunable of the MHT engine. It is immutable once
// constructed; mht.New copies it by value.
type Config struct {
	NPruning            int
	DistanceThreshold   float64
	DistanceThreshold2  float64
	TrackerWeights      TrackerWeights
	ColorScoreThreshold float64
	ColorScoreWeight    float64
	LostTimeThreshold   float64
	LostTimeWeight      float64
	ColorHistBins       int
	FPS                 float64
	HistUpdateFrequency float64
	HistStackSize       int
}

// Option mutates a Config under construction.
type Option func(*Config)

// Default returns the baseline configuration with the reference parameter
// values.
func Default() Config {
	return Config{
		NPruning:            3,
		DistanceThreshold:   100,
		DistanceThreshold2:  75,
		TrackerWeights:      TrackerWeights{KCF: 0.45, MedianFlow: 0.35, MIL: 0.20},
		ColorScoreThreshold: 0.20,
		ColorScoreWeight:    0.75,
		LostTimeThreshold:   25,
		LostTimeWeight:      0.25,
		ColorHistBins:       4,
		FPS:                 20,
		HistUpdateFrequency: 0.5,
		HistStackSize:       25,
	}
}

// WithNPruning sets the N-scan pruning depth.
func WithNPruning(n int) Option { return func(c *Config) { c.NPruning = n } }

// WithDistanceThresholds sets the primary and secondary gating distances.
func WithDistanceThresholds(primary, secondary float64) Option {
	return func(c *Config) {
		c.DistanceThreshold = primary
		c.DistanceThreshold2 = secondary
	}
}

// WithTrackerWeights sets the per-auxiliary-tracker gating weights.
func WithTrackerWeights(w TrackerWeights) Option { return func(c *Config) { c.TrackerWeights = w } }

// WithColorScore sets the re-identification appearance threshold and weight.
func WithColorScore(threshold, weight float64) Option {
	return func(c *Config) {
		c.ColorScoreThreshold = threshold
		c.ColorScoreWeight = weight
	}
}

// WithLostTime sets the re-identification time-decay threshold and weight.
func WithLostTime(threshold, weight float64) Option {
	return func(c *Config) {
		c.LostTimeThreshold = threshold
		c.LostTimeWeight = weight
	}
}

// WithColorHistBins sets the per-channel bin count of the appearance
// descriptor.
func WithColorHistBins(bins int) Option { return func(c *Config) { c.ColorHistBins = bins } }

// WithFPS sets the frame rate used to convert dummy extensions to seconds.
func WithFPS(fps float64) Option { return func(c *Config) { c.FPS = fps } }

// WithHistUpdateFrequency sets the appearance-stack refresh rate in Hz.
func WithHistUpdateFrequency(hz float64) Option {
	return func(c *Config) { c.HistUpdateFrequency = hz }
}

// WithHistStackSize sets the maximum appearance stack depth per track.
func WithHistStackSize(n int) Option { return func(c *Config) { c.HistStackSize = n } }

// New builds a validated Config starting from Default() and applying opts
// in order.
func New(opts ...Option) (Config, error) {
	c := Default()
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every field is within its admissible range, returning a
// *ConfigError naming the first offending field.
func (c Config) Validate() error {
	if c.NPruning < 0 {
		return newConfigError("NPruning", errors.New("must be >= 0"))
	}
	if c.DistanceThreshold <= 0 {
		return newConfigError("DistanceThreshold", errors.New("must be > 0"))
	}
	if c.DistanceThreshold2 <= 0 {
		return newConfigError("DistanceThreshold2", errors.New("must be > 0"))
	}
	if c.ColorScoreThreshold <= 0 {
		return newConfigError("ColorScoreThreshold", errors.New("must be > 0"))
	}
	if c.ColorScoreWeight < 0 {
		return newConfigError("ColorScoreWeight", errors.New("must be >= 0"))
	}
	if c.LostTimeThreshold <= 0 {
		return newConfigError("LostTimeThreshold", errors.New("must be > 0"))
	}
	if c.LostTimeWeight < 0 {
		return newConfigError("LostTimeWeight", errors.New("must be >= 0"))
	}
	if c.ColorHistBins < 1 {
		return newConfigError("ColorHistBins", errors.New("must be >= 1"))
	}
	if c.FPS <= 0 {
		return newConfigError("FPS", errors.New("must be > 0"))
	}
	if c.HistUpdateFrequency <= 0 {
		return newConfigError("HistUpdateFrequency", errors.New("must be > 0"))
	}
	if c.HistStackSize < 1 {
		return newConfigError("HistStackSize", errors.New("must be >= 1"))
	}
	w := c.TrackerWeights
	if w.KCF < 0 || w.MedianFlow < 0 || w.MIL < 0 {
		return newConfigError("TrackerWeights", errors.New("weights must be >= 0"))
	}
	return nil
}

// HistUpdateEveryFrames converts FPS and HistUpdateFrequency into the
// integer frame cadence used by track.Track.ExtendLive.
func (c Config) HistUpdateEveryFrames() int {
	if c.HistUpdateFrequency <= 0 {
		return 1
	}
	n := int(c.FPS / c.HistUpdateFrequency)
	if n < 1 {
		n = 1
	}
	return n
}

// LoadINI reads a Config from an .ini file, in the idiom of the MOTChallenge
// seqinfo.ini loaders in the example pack, validating the same admissible
// ranges as New.
func LoadINI(path string) (Config, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return Config{}, newConfigError("file", errors.Wrap(err, path))
	}
	sec := cfg.Section("MHT")
	c := Default()
	c.NPruning = sec.Key("NPruning").MustInt(c.NPruning)
	c.DistanceThreshold = sec.Key("DistanceThreshold").MustFloat64(c.DistanceThreshold)
	c.DistanceThreshold2 = sec.Key("DistanceThreshold2").MustFloat64(c.DistanceThreshold2)
	c.TrackerWeights.KCF = sec.Key("TrackerWeightKCF").MustFloat64(c.TrackerWeights.KCF)
	c.TrackerWeights.MedianFlow = sec.Key("TrackerWeightMedianFlow").MustFloat64(c.TrackerWeights.MedianFlow)
	c.TrackerWeights.MIL = sec.Key("TrackerWeightMIL").MustFloat64(c.TrackerWeights.MIL)
	c.ColorScoreThreshold = sec.Key("ColorScoreThreshold").MustFloat64(c.ColorScoreThreshold)
	c.ColorScoreWeight = sec.Key("ColorScoreWeight").MustFloat64(c.ColorScoreWeight)
	c.LostTimeThreshold = sec.Key("LostTimeThreshold").MustFloat64(c.LostTimeThreshold)
	c.LostTimeWeight = sec.Key("LostTimeWeight").MustFloat64(c.LostTimeWeight)
	c.ColorHistBins = sec.Key("ColorHistBins").MustInt(c.ColorHistBins)
	c.FPS = sec.Key("FPS").MustFloat64(c.FPS)
	c.HistUpdateFrequency = sec.Key("HistUpdateFrequency").MustFloat64(c.HistUpdateFrequency)
	c.HistStackSize = sec.Key("HistStackSize").MustInt(c.HistStackSize)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
