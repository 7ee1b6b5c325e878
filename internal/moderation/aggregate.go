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
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
)

// SystemActor is the moderation log actor for automatic decisions.
const SystemActor = "system:auto-moderation"

// Aggregator rebuilds content scores from the reports table and decides
// whether a score crosses the auto-hide threshold.
type Aggregator struct {
	cfg      config.AutoHideConfig
	caps     Capabilities
	reports  ReportStore
	scores   ScoreStore
	content  ContentStore
	audit    AuditStore
	feedback *FeedbackLoop
	now      func() time.Time
	logger   *slog.Logger
}

func NewAggregator(cfg config.AutoHideConfig, caps Capabilities, reports ReportStore, scores ScoreStore, content ContentStore, audit AuditStore, feedback *FeedbackLoop, now func() time.Time, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		cfg:      cfg,
		caps:     caps,
		reports:  reports,
		scores:   scores,
		content:  content,
		audit:    audit,
		feedback: feedback,
		now:      now,
		logger:   logger,
	}
}

// Threshold is the weight total at which content of the given type is hidden.
func (a *Aggregator) Threshold(contentType string, siteScale float64) float64 {
	return round6(math.Max(1.0, a.cfg.BaseThreshold*siteScale*a.cfg.TypeMultiplier(contentType)))
}

// Recompute rebuilds the score of one content item from every report filed
// against any of its identifiers and upserts it. It returns nil, nil when the
// score table is unavailable.
func (a *Aggregator) Recompute(ctx context.Context, contentType, canonicalID, slug string, identifiers []string, threshold, siteScale float64) (*models.ContentScore, error) {
	if !a.caps.Supports(database.TableReports) || !a.caps.Supports(database.TableContentScores) {
		return nil, nil
	}
	start := time.Now()
	defer func() { metrics.RecomputeDuration.Observe(time.Since(start).Seconds()) }()

	ids := identifierSet(canonicalID, identifiers)
	rows, err := a.reports.ListForContent(ctx, contentType, ids)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].ID.String() < rows[j].ID.String()
	})

	weighted := a.caps.Supports(database.TableReports + ".weight")
	score := &models.ContentScore{
		ContentType:      contentType,
		ContentID:        canonicalID,
		WeightThreshold:  threshold,
		SiteScale:        siteScale,
		LastRecomputedAt: a.now(),
	}
	reporters := make(map[uuid.UUID]struct{})
	anonymous := 0
	for i := range rows {
		r := &rows[i]
		score.ReportsCount++
		if weighted {
			score.WeightTotal += r.Weight
		} else {
			score.WeightTotal++
		}
		if r.ReporterID != nil {
			reporters[*r.ReporterID] = struct{}{}
		} else {
			anonymous++
		}
		created := r.CreatedAt
		score.LastReportAt = &created
	}
	score.ReportersCount = len(reporters) + anonymous
	score.WeightTotal = round6(score.WeightTotal)
	meta := map[string]any{
		"canonical_id": canonicalID,
		"identifiers":  ids,
	}
	if slug != "" {
		meta["slug"] = slug
	}
	score.Metadata = jsonMap(meta)

	if err := a.scores.Upsert(ctx, score); err != nil {
		return nil, fmt.Errorf("upsert content score: %w", err)
	}
	stored, err := a.scores.Get(ctx, contentType, canonicalID)
	if err != nil || stored == nil {
		return score, nil
	}
	return stored, nil
}

// MaybeAutoHide hides item when its score qualifies. It reports whether the
// item was hidden by this call.
func (a *Aggregator) MaybeAutoHide(ctx context.Context, item *ContentItem, score *models.ContentScore, threshold, siteScale float64, meta RequestMeta) (bool, error) {
	if !a.eligible(item, score, threshold) {
		return false, nil
	}

	if err := a.content.Hide(ctx, item); err != nil {
		return false, fmt.Errorf("hide content: %w", err)
	}
	at := a.now()

	resolved, reporters, err := a.ResolveBatch(ctx, item.Type, item.Identifiers, models.ReportAutoHidden, nil,
		fmt.Sprintf("auto-hidden at weight %.2f / %.2f", score.WeightTotal, threshold))
	if err != nil {
		a.logger.Error("auto-hide report resolution failed", "content_type", item.Type, "content_id", item.ID, "error", err)
	}

	if a.caps.Supports(database.TableContentScores) {
		if err := a.scores.MarkAutoHidden(ctx, item.Type, item.ID, at, threshold, siteScale); err != nil {
			a.logger.Error("stamp auto-hidden score failed", "content_type", item.Type, "content_id", item.ID, "error", err)
		}
	}

	entry := &models.ModerationLog{
		Actor:       SystemActor,
		Action:      models.ActionAutoHide,
		ContentType: item.Type,
		ContentID:   item.ID,
		ContentURL:  item.URL,
		Reason:      "report weight reached the auto-hide threshold",
		Metrics: jsonMap(map[string]any{
			"weight_total":     score.WeightTotal,
			"weight_threshold": threshold,
			"site_scale":       siteScale,
			"reports_count":    score.ReportsCount,
			"reporters_count":  score.ReportersCount,
			"reports_resolved": resolved,
			"reporters":        reporters,
			"title":            item.Title,
			"author_id":        item.AuthorID,
		}),
		IP:        meta.IP,
		Location:  meta.Location,
		UserAgent: meta.UserAgent,
		CreatedAt: at,
	}
	if a.caps.Supports(database.TableModerationLogs) {
		if err := a.audit.Append(ctx, entry); err != nil {
			a.logger.Error("moderation log append failed", "action", entry.Action, "content_id", item.ID, "error", err)
		}
	}

	metrics.AutoHides.WithLabelValues(item.Type).Inc()
	a.logger.Info("content auto-hidden",
		"content_type", item.Type, "content_id", item.ID,
		"weight_total", score.WeightTotal, "weight_threshold", threshold,
		"reports_count", score.ReportsCount)
	return true, nil
}

func (a *Aggregator) eligible(item *ContentItem, score *models.ContentScore, threshold float64) bool {
	switch {
	case !a.cfg.Enabled, item == nil, score == nil:
		return false
	case !a.cfg.Hideable(item.Type):
		return false
	case score.ReportsCount < a.cfg.MinimumReports:
		return false
	case score.WeightTotal < threshold:
		return false
	case item.Hidden, item.ModerationStatus != models.ModerationApproved:
		return false
	}
	return true
}

// ResolveBatch resolves every pending report against the content and runs
// the feedback loop once per reporter. It returns the number of reports
// resolved and the number of distinct reporters with an account.
func (a *Aggregator) ResolveBatch(ctx context.Context, contentType string, identifiers []string, status string, actorID *uuid.UUID, note string) (int, int, error) {
	if !a.caps.Supports(database.TableReports) || len(identifiers) == 0 {
		return 0, 0, nil
	}
	rows, err := a.reports.ResolvePending(ctx, contentType, identifiers, status, actorID, note, a.now())
	if err != nil {
		return 0, 0, fmt.Errorf("resolve pending reports: %w", err)
	}
	metrics.Resolutions.WithLabelValues(status).Add(float64(len(rows)))

	counts := make(map[uuid.UUID]int)
	for _, r := range rows {
		if r.ReporterID != nil {
			counts[*r.ReporterID]++
		}
	}
	if err := a.feedback.ApplyResolution(ctx, counts, status); err != nil {
		return len(rows), len(counts), fmt.Errorf("feedback: %w", err)
	}
	return len(rows), len(counts), nil
}

// identifierSet returns canonical plus identifiers, deduplicated and sorted.
func identifierSet(canonical string, identifiers []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(identifiers)+1)
	for _, id := range append([]string{canonical}, identifiers...) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func jsonMap(m map[string]any) datatypes.JSON {
	b, err := json.Marshal(m)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}
