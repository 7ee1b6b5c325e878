package textanalysis

import (
	"errors"
	"fmt"
)

// DefaultProfile is used for content types without their own profile.
const DefaultProfile = "default"

// Signal holds the knobs of a single heuristic.
type Signal struct {
	Weight    float64 `toml:"weight" json:"weight"`
	Threshold float64 `toml:"threshold" json:"threshold"`
	MinSample int     `toml:"min_sample" json:"min_sample"`
}

// Profile holds the per-content-type minimums.
type Profile struct {
	Disabled       bool    `toml:"disabled" json:"disabled"`
	MinChars       int     `toml:"min_chars" json:"min_chars"`
	MinWords       int     `toml:"min_words" json:"min_words"`
	ScoreThreshold float64 `toml:"score_threshold" json:"score_threshold"`
}

type Signals struct {
	TooShort       Signal `toml:"too_short" json:"too_short"`
	LowUniqueRatio Signal `toml:"low_unique_ratio" json:"low_unique_ratio"`
	DominantWord   Signal `toml:"dominant_word" json:"dominant_word"`
	RepeatedChars  Signal `toml:"repeated_chars" json:"repeated_chars"`
	Uppercase      Signal `toml:"excessive_uppercase" json:"excessive_uppercase"`
	Symbols        Signal `toml:"excessive_symbols" json:"excessive_symbols"`
	Links          Signal `toml:"too_many_links" json:"too_many_links"`
	LongLines      Signal `toml:"long_lines" json:"long_lines"`
}

type Config struct {
	Enabled      bool               `toml:"enabled" json:"enabled"`
	MaxSignals   int                `toml:"max_signals" json:"max_signals"`
	MinRunLength int                `toml:"min_run_length" json:"min_run_length"`
	Profiles     map[string]Profile `toml:"profiles" json:"profiles"`
	Signals      Signals            `toml:"signals" json:"signals"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		MaxSignals:   8,
		MinRunLength: 5,
		Profiles: map[string]Profile{
			DefaultProfile: {MinChars: 20, MinWords: 4, ScoreThreshold: 2.5},
			"post":         {MinChars: 200, MinWords: 40, ScoreThreshold: 3.0},
			"question":     {MinChars: 30, MinWords: 6, ScoreThreshold: 2.5},
			"comment":      {MinChars: 2, MinWords: 1, ScoreThreshold: 2.5},
			"review":       {MinChars: 20, MinWords: 4, ScoreThreshold: 2.5},
		},
		Signals: Signals{
			TooShort:       Signal{Weight: 1.5},
			LowUniqueRatio: Signal{Weight: 1.2, Threshold: 0.35, MinSample: 20},
			DominantWord:   Signal{Weight: 1.0, Threshold: 0.2, MinSample: 20},
			RepeatedChars:  Signal{Weight: 1.5, Threshold: 1},
			Uppercase:      Signal{Weight: 1.0, Threshold: 0.6, MinSample: 20},
			Symbols:        Signal{Weight: 1.0, Threshold: 0.35, MinSample: 20},
			Links:          Signal{Weight: 1.0, Threshold: 3},
			LongLines:      Signal{Weight: 0.8, Threshold: 600},
		},
	}
}

// Profile returns the profile for contentType, falling back to the default one.
func (c Config) Profile(contentType string) Profile {
	if p, ok := c.Profiles[contentType]; ok {
		return p
	}
	return c.Profiles[DefaultProfile]
}

func (c Config) Validate() error {
	var errs []error
	if c.MinRunLength < 2 {
		errs = append(errs, fmt.Errorf("text.min_run_length must be >= 2, got %d", c.MinRunLength))
	}
	for name, p := range c.Profiles {
		if p.MinChars < 0 || p.MinWords < 0 {
			errs = append(errs, fmt.Errorf("text.profiles.%s: minimums must not be negative", name))
		}
		if p.ScoreThreshold < 0 {
			errs = append(errs, fmt.Errorf("text.profiles.%s: score_threshold must not be negative", name))
		}
	}
	for name, s := range c.Signals.named() {
		if s.Weight < 0 || s.Threshold < 0 || s.MinSample < 0 {
			errs = append(errs, fmt.Errorf("text.signals.%s: knobs must not be negative", name))
		}
	}
	return errors.Join(errs...)
}

func (s Signals) named() map[string]Signal {
	return map[string]Signal{
		SignalTooShort:       s.TooShort,
		SignalLowUniqueRatio: s.LowUniqueRatio,
		SignalDominantWord:   s.DominantWord,
		SignalRepeatedChars:  s.RepeatedChars,
		SignalUppercase:      s.Uppercase,
		SignalSymbols:        s.Symbols,
		SignalLinks:          s.Links,
		SignalLongLines:      s.LongLines,
	}
}
