package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/textanalysis"
)

// Content types the moderation engine knows about.
const (
	ContentPost     = "post"
	ContentQuestion = "question"
	ContentComment  = "comment"
	ContentReview   = "review"
)

var ContentTypes = []string{ContentPost, ContentQuestion, ContentComment, ContentReview}

// Activity action keys used by the trust model.
const (
	ActionPosts     = "posts"
	ActionQuestions = "questions"
	ActionComments  = "comments"
	ActionReviews   = "reviews"
	ActionFollows   = "follows"
	ActionUpvotes   = "upvotes"
	ActionSaves     = "saves"
)

const minSiteScaleCacheSeconds = 30

type Moderation struct {
	RoleWeights map[string]float64  `toml:"role_weights"`
	DefaultRole string              `toml:"default_role"`
	Trust       TrustConfig         `toml:"trust"`
	Activity    ActivityConfig      `toml:"activity"`
	Accuracy    AccuracyConfig      `toml:"accuracy"`
	SiteScale   SiteScaleConfig     `toml:"site_scale"`
	AutoHide    AutoHideConfig      `toml:"auto_hide"`
	Text        textanalysis.Config `toml:"text"`
}

type TrustConfig struct {
	MinTrust  float64 `toml:"min_trust"`
	MaxTrust  float64 `toml:"max_trust"`
	MinWeight float64 `toml:"min_weight"`
	MaxWeight float64 `toml:"max_weight"`
}

type ActivityConfig struct {
	Points          map[string]float64 `toml:"points"`
	AgePointsPerDay float64            `toml:"age_points_per_day"`
	AgeDaysCap      float64            `toml:"age_days_cap"`
	MaxPoints       float64            `toml:"max_points"`
	Divisor         float64            `toml:"divisor"`
}

type AccuracyConfig struct {
	BoostMax      float64 `toml:"boost_max"`
	PenaltyMax    float64 `toml:"penalty_max"`
	MinMultiplier float64 `toml:"min_multiplier"`
}

type SiteScaleConfig struct {
	WindowDays        int     `toml:"window_days"`
	BaseReportsPerDay float64 `toml:"base_reports_per_day"`
	Sensitivity       float64 `toml:"sensitivity"`
	MinScale          float64 `toml:"min_scale"`
	MaxScale          float64 `toml:"max_scale"`
	CacheSeconds      int     `toml:"cache_seconds"`
}

type AutoHideConfig struct {
	Enabled         bool               `toml:"enabled"`
	Types           []string           `toml:"types"`
	MinimumReports  int                `toml:"minimum_reports"`
	BaseThreshold   float64            `toml:"base_threshold"`
	TypeMultipliers map[string]float64 `toml:"type_multipliers"`
}

func DefaultModeration() Moderation {
	return Moderation{
		RoleWeights: map[string]float64{
			"anonymous": 1.0,
			"user":      3.0,
			"trusted":   4.5,
			"moderator": 6.0,
			"admin":     8.0,
		},
		DefaultRole: "user",
		Trust: TrustConfig{
			MinTrust:  0.25,
			MaxTrust:  3.0,
			MinWeight: 0.5,
			MaxWeight: 12.0,
		},
		Activity: ActivityConfig{
			Points: map[string]float64{
				ActionPosts:     5,
				ActionQuestions: 4,
				ActionComments:  1,
				ActionReviews:   3,
				ActionFollows:   0.5,
				ActionUpvotes:   0.2,
				ActionSaves:     0.2,
			},
			AgePointsPerDay: 0.1,
			AgeDaysCap:      365,
			MaxPoints:       500,
			Divisor:         200,
		},
		Accuracy: AccuracyConfig{
			BoostMax:      0.6,
			PenaltyMax:    0.7,
			MinMultiplier: 0.3,
		},
		SiteScale: SiteScaleConfig{
			WindowDays:        7,
			BaseReportsPerDay: 20,
			Sensitivity:       0.5,
			MinScale:          0.75,
			MaxScale:          2.5,
			CacheSeconds:      300,
		},
		AutoHide: AutoHideConfig{
			Enabled:        true,
			Types:          []string{ContentPost, ContentQuestion},
			MinimumReports: 3,
			BaseThreshold:  16,
			TypeMultipliers: map[string]float64{
				ContentQuestion: 1.1,
			},
		},
		Text: textanalysis.DefaultConfig(),
	}
}

// LoadModeration returns the defaults overlaid with the TOML file at path.
// An empty path or a missing file yields the defaults.
func LoadModeration(path string) (Moderation, error) {
	mod := DefaultModeration()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return mod, fmt.Errorf("read %s: %w", path, err)
		default:
			if _, err := toml.Decode(string(data), &mod); err != nil {
				return mod, fmt.Errorf("parse %s: %w", path, err)
			}
			if err := overlayProfiles(string(data), &mod); err != nil {
				return mod, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := mod.Validate(); err != nil {
		return mod, err
	}
	return mod, nil
}

// overlayProfiles re-decodes each [text.profiles.<type>] table onto the
// default profile for that type. A plain decode starts every map value from
// a zero struct, which would zero the keys the file leaves out.
func overlayProfiles(data string, mod *Moderation) error {
	var overlay struct {
		Text struct {
			Profiles map[string]toml.Primitive `toml:"profiles"`
		} `toml:"text"`
	}
	md, err := toml.Decode(data, &overlay)
	if err != nil {
		return err
	}
	defaults := textanalysis.DefaultConfig()
	for name, prim := range overlay.Text.Profiles {
		profile, ok := defaults.Profiles[name]
		if !ok {
			profile = defaults.Profiles[textanalysis.DefaultProfile]
		}
		if err := md.PrimitiveDecode(prim, &profile); err != nil {
			return fmt.Errorf("text.profiles.%s: %w", name, err)
		}
		mod.Text.Profiles[name] = profile
	}
	return nil
}

// Validate rejects inverted clamp ranges and nonsensical windows.
func (m Moderation) Validate() error {
	var errs []error
	pair := func(name string, lo, hi float64) {
		if lo > hi {
			errs = append(errs, fmt.Errorf("%s: min %.3f > max %.3f", name, lo, hi))
		}
	}
	pair("trust.min_trust/max_trust", m.Trust.MinTrust, m.Trust.MaxTrust)
	pair("trust.min_weight/max_weight", m.Trust.MinWeight, m.Trust.MaxWeight)
	pair("site_scale.min_scale/max_scale", m.SiteScale.MinScale, m.SiteScale.MaxScale)
	pair("accuracy.min_multiplier/1+boost_max", m.Accuracy.MinMultiplier, 1+m.Accuracy.BoostMax)

	if m.SiteScale.WindowDays <= 0 {
		errs = append(errs, fmt.Errorf("site_scale.window_days must be positive, got %d", m.SiteScale.WindowDays))
	}
	if m.AutoHide.MinimumReports < 1 {
		errs = append(errs, fmt.Errorf("auto_hide.minimum_reports must be >= 1, got %d", m.AutoHide.MinimumReports))
	}
	for _, t := range m.AutoHide.Types {
		if !IsContentType(t) {
			errs = append(errs, fmt.Errorf("auto_hide.types: unknown content type %q", t))
		}
	}
	if _, ok := m.RoleWeights[m.DefaultRole]; !ok {
		errs = append(errs, fmt.Errorf("default_role %q has no role weight", m.DefaultRole))
	}
	for role, w := range m.RoleWeights {
		if w < 0 {
			errs = append(errs, fmt.Errorf("role_weights.%s must not be negative", role))
		}
	}
	if err := m.Text.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CacheTTL is the site scale cache lifetime, never below 30s.
func (s SiteScaleConfig) CacheTTL() time.Duration {
	secs := s.CacheSeconds
	if secs < minSiteScaleCacheSeconds {
		secs = minSiteScaleCacheSeconds
	}
	return time.Duration(secs) * time.Second
}

// TypeMultiplier defaults to 1.0 for types without an explicit entry.
func (a AutoHideConfig) TypeMultiplier(contentType string) float64 {
	if m, ok := a.TypeMultipliers[contentType]; ok && m > 0 {
		return m
	}
	return 1.0
}

func (a AutoHideConfig) Hideable(contentType string) bool {
	for _, t := range a.Types {
		if t == contentType {
			return true
		}
	}
	return false
}

func IsContentType(t string) bool {
	for _, c := range ContentTypes {
		if c == t {
			return true
		}
	}
	return false
}
