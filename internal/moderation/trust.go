package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
)

const roleAnonymous = "anonymous"

// WeightResult is the outcome of one trust computation. Profile is nil for
// anonymous reporters and when the profile table is unavailable.
type WeightResult struct {
	Role               string                  `json:"role"`
	RoleWeight         float64                 `json:"role_weight"`
	ActivityPoints     float64                 `json:"activity_points"`
	ActivityMultiplier float64                 `json:"activity_multiplier"`
	AccuracyMultiplier float64                 `json:"accuracy_multiplier"`
	TrustScore         float64                 `json:"trust_score"`
	ReporterWeight     float64                 `json:"reporter_weight"`
	ReportWeight       float64                 `json:"report_weight"`
	Profile            *models.ReporterProfile `json:"-"`
}

type TrustModel struct {
	cfg      config.Moderation
	caps     Capabilities
	users    UserStore
	activity ActivityStore
	profiles ProfileStore
	now      func() time.Time
	logger   *slog.Logger
}

func NewTrustModel(cfg config.Moderation, caps Capabilities, users UserStore, activity ActivityStore, profiles ProfileStore, now func() time.Time, logger *slog.Logger) *TrustModel {
	return &TrustModel{
		cfg:      cfg,
		caps:     caps,
		users:    users,
		activity: activity,
		profiles: profiles,
		now:      now,
		logger:   logger,
	}
}

// AnonymousWeight is the weight of a report filed without an account.
func (t *TrustModel) AnonymousWeight() float64 {
	return math.Max(1.0, t.cfg.RoleWeights[roleAnonymous])
}

// RoleWeight looks up role, falling back to the default role.
func (t *TrustModel) RoleWeight(role string) float64 {
	if w, ok := t.cfg.RoleWeights[role]; ok {
		return w
	}
	if w, ok := t.cfg.RoleWeights[t.cfg.DefaultRole]; ok {
		return w
	}
	return 1.0
}

// ComputeWeight derives the weight a new report from reporterID carries and
// refreshes the reporter's profile. Unknown users are weighted as anonymous.
func (t *TrustModel) ComputeWeight(ctx context.Context, reporterID *uuid.UUID) (WeightResult, error) {
	if reporterID == nil {
		return t.anonymous(), nil
	}
	user, err := t.users.GetUser(ctx, *reporterID)
	if err != nil {
		return WeightResult{}, fmt.Errorf("load reporter: %w", err)
	}
	if user == nil {
		return t.anonymous(), nil
	}

	var profile *models.ReporterProfile
	if t.caps.Supports(database.TableReporterProfiles) {
		profile, err = t.profiles.GetOrCreate(ctx, user.ID)
		if err != nil {
			return WeightResult{}, fmt.Errorf("load reporter profile: %w", err)
		}
	}
	return t.refresh(ctx, user, profile)
}

// Recalculate re-derives a stored profile from its current counters. It is a
// no-op for users without a profile.
func (t *TrustModel) Recalculate(ctx context.Context, userID uuid.UUID) (WeightResult, error) {
	if !t.caps.Supports(database.TableReporterProfiles) {
		return WeightResult{}, nil
	}
	profile, err := t.profiles.Get(ctx, userID)
	if err != nil {
		return WeightResult{}, fmt.Errorf("load reporter profile: %w", err)
	}
	if profile == nil {
		return WeightResult{}, nil
	}
	user, err := t.users.GetUser(ctx, userID)
	if err != nil {
		return WeightResult{}, fmt.Errorf("load reporter: %w", err)
	}
	if user == nil {
		// deleted account: keep the role neutral so counters still apply
		user = &models.User{ID: userID, Role: t.cfg.DefaultRole, CreatedAt: profile.CreatedAt}
	}
	return t.refresh(ctx, user, profile)
}

func (t *TrustModel) anonymous() WeightResult {
	w := t.AnonymousWeight()
	return WeightResult{
		Role:               roleAnonymous,
		RoleWeight:         t.cfg.RoleWeights[roleAnonymous],
		ActivityMultiplier: 1,
		AccuracyMultiplier: 1,
		TrustScore:         1,
		ReporterWeight:     w,
		ReportWeight:       w,
	}
}

// Preview computes the current weight of userID without writing anything.
// A nil result means the user does not exist.
func (t *TrustModel) Preview(ctx context.Context, userID uuid.UUID) (*WeightResult, error) {
	user, err := t.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load reporter: %w", err)
	}
	if user == nil {
		return nil, nil
	}
	var profile *models.ReporterProfile
	if t.caps.Supports(database.TableReporterProfiles) {
		if profile, err = t.profiles.Get(ctx, userID); err != nil {
			return nil, fmt.Errorf("load reporter profile: %w", err)
		}
	}
	res, _ := t.derive(ctx, user, profile)
	return &res, nil
}

func (t *TrustModel) refresh(ctx context.Context, user *models.User, profile *models.ReporterProfile) (WeightResult, error) {
	res, counts := t.derive(ctx, user, profile)
	if profile == nil {
		return res, nil
	}
	now := t.now()
	profile.ActivityPoints = res.ActivityPoints
	profile.TrustScore = res.TrustScore
	profile.Weight = res.ReporterWeight
	profile.LastComputedAt = &now
	profile.Metadata = snapshot(res, counts)
	if err := t.profiles.Save(ctx, profile); err != nil {
		return res, fmt.Errorf("save reporter profile: %w", err)
	}
	return res, nil
}

func (t *TrustModel) derive(ctx context.Context, user *models.User, profile *models.ReporterProfile) (WeightResult, map[string]int64) {
	counts, err := t.activity.CountActions(ctx, user.ID)
	if err != nil {
		// activity only ever raises trust, so a failed lookup just forfeits the bonus
		t.logger.Warn("activity lookup failed", "user_id", user.ID, "error", err)
		counts = nil
	}

	res := WeightResult{Role: user.Role, RoleWeight: t.RoleWeight(user.Role), Profile: profile}
	res.ActivityPoints = t.activityPoints(counts, user.CreatedAt)
	res.ActivityMultiplier = 1.0
	if t.cfg.Activity.Divisor > 0 {
		res.ActivityMultiplier += res.ActivityPoints / t.cfg.Activity.Divisor
	}
	res.AccuracyMultiplier = 1.0
	if profile != nil {
		res.AccuracyMultiplier = t.accuracyMultiplier(profile)
	}

	tc := t.cfg.Trust
	res.TrustScore = round6(clamp(res.ActivityMultiplier*res.AccuracyMultiplier, tc.MinTrust, tc.MaxTrust))
	res.ReporterWeight = round6(clamp(res.RoleWeight*res.TrustScore, tc.MinWeight, tc.MaxWeight))
	res.ReportWeight = res.ReporterWeight
	return res, counts
}

func (t *TrustModel) activityPoints(counts map[string]int64, createdAt time.Time) float64 {
	ac := t.cfg.Activity
	points := 0.0
	// sorted so the float sum is identical on every run
	actions := make([]string, 0, len(ac.Points))
	for a := range ac.Points {
		actions = append(actions, a)
	}
	sort.Strings(actions)
	for _, a := range actions {
		points += float64(counts[a]) * ac.Points[a]
	}

	if !createdAt.IsZero() {
		days := math.Floor(t.now().Sub(createdAt).Hours() / 24)
		if days > 0 {
			points += math.Min(days, ac.AgeDaysCap) * ac.AgePointsPerDay
		}
	}
	if ac.MaxPoints > 0 {
		points = math.Min(points, ac.MaxPoints)
	}
	return round6(points)
}

func (t *TrustModel) accuracyMultiplier(p *models.ReporterProfile) float64 {
	resolved := p.Resolved()
	if resolved == 0 {
		return 1.0
	}
	denom := float64(max(p.ReportsSubmitted, resolved))
	confirmed := float64(p.ReportsConfirmed+p.ReportsAutoHidden) / denom
	rejected := float64(p.ReportsRejected) / denom

	acc := t.cfg.Accuracy
	m := 1 + confirmed*acc.BoostMax - rejected*acc.PenaltyMax
	return clamp(m, acc.MinMultiplier, 1+acc.BoostMax)
}

func snapshot(res WeightResult, counts map[string]int64) datatypes.JSON {
	b, err := json.Marshal(map[string]any{
		"role":                res.Role,
		"role_weight":         res.RoleWeight,
		"activity_multiplier": res.ActivityMultiplier,
		"accuracy_multiplier": res.AccuracyMultiplier,
		"counts":              counts,
	})
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}
