package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/cachestore"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
)

const (
	ActionNone    = "none"
	ActionHide    = "hide"
	ActionRestore = "restore"
)

type ReportInput struct {
	ReporterID  *uuid.UUID
	ContentType string
	ContentRef  string
	Reason      string
	Details     string
	ContentURL  string
	Meta        RequestMeta
}

type SubmitResult struct {
	OK              bool       `json:"ok"`
	Skipped         bool       `json:"skipped,omitempty"`
	Duplicate       bool       `json:"duplicate,omitempty"`
	ReportID        *uuid.UUID `json:"report_id,omitempty"`
	ReportWeight    float64    `json:"report_weight"`
	WeightTotal     float64    `json:"weight_total"`
	WeightThreshold float64    `json:"weight_threshold"`
	AutoHidden      bool       `json:"auto_hidden"`
}

type ResolveInput struct {
	ContentType string
	ContentRef  string
	Resolution  string
	Action      string
	Reason      string
	ActorID     *uuid.UUID
	Meta        RequestMeta
}

type ResolveResult struct {
	Skipped   bool                 `json:"skipped,omitempty"`
	Resolved  int                  `json:"resolved"`
	Reporters int                  `json:"reporters"`
	Score     *models.ContentScore `json:"score,omitempty"`
}

// Inspection is a read-only view of a content item's moderation state.
type Inspection struct {
	ContentType string               `json:"content_type"`
	ContentID   string               `json:"content_id"`
	Identifiers []string             `json:"identifiers"`
	Found       bool                 `json:"found"`
	Title       string               `json:"title,omitempty"`
	URL         string               `json:"url,omitempty"`
	Hidden      bool                 `json:"hidden"`
	Score       *models.ContentScore `json:"score"`
	Reports     []models.Report      `json:"reports"`
}

// Deps are the collaborators of an Engine. Now and Logger are optional.
type Deps struct {
	Caps     Capabilities
	Reports  ReportStore
	Scores   ScoreStore
	Profiles ProfileStore
	Users    UserStore
	Activity ActivityStore
	Content  ContentStore
	Audit    AuditStore
	Cache    cachestore.CacheStore
	Now      func() time.Time
	Logger   *slog.Logger
}

// Engine wires the trust model, site scale, aggregation and feedback loop
// into the two entry points used by the HTTP layer.
type Engine struct {
	caps       Capabilities
	reports    ReportStore
	scores     ScoreStore
	profiles   ProfileStore
	content    ContentStore
	audit      AuditStore
	trust      *TrustModel
	siteScale  *SiteScaleEstimator
	aggregator *Aggregator
	feedback   *FeedbackLoop
	now        func() time.Time
	logger     *slog.Logger
}

func NewEngine(cfg config.Moderation, d Deps) *Engine {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "moderation")

	trust := NewTrustModel(cfg, d.Caps, d.Users, d.Activity, d.Profiles, now, logger)
	feedback := NewFeedbackLoop(d.Caps, d.Profiles, trust, logger)
	return &Engine{
		caps:       d.Caps,
		reports:    d.Reports,
		scores:     d.Scores,
		profiles:   d.Profiles,
		content:    d.Content,
		audit:      d.Audit,
		trust:      trust,
		siteScale:  NewSiteScaleEstimator(cfg.SiteScale, d.Caps, d.Reports, d.Cache, now, logger),
		aggregator: NewAggregator(cfg.AutoHide, d.Caps, d.Reports, d.Scores, d.Content, d.Audit, feedback, now, logger),
		feedback:   feedback,
		now:        now,
		logger:     logger,
	}
}

func (e *Engine) Trust() *TrustModel { return e.trust }
func (e *Engine) SiteScale() *SiteScaleEstimator { return e.siteScale }
func (e *Engine) Aggregator() *Aggregator { return e.aggregator }
func (e *Engine) Feedback() *FeedbackLoop { return e.feedback }

// SubmitReport records a report and applies its moderation effects. Only
// validation errors and failures before the report is stored are returned;
// anything after the insert is logged and skipped.
func (e *Engine) SubmitReport(ctx context.Context, in ReportInput) (SubmitResult, error) {
	if !e.caps.Supports(database.TableReports) {
		metrics.ReportsSubmitted.WithLabelValues(in.ContentType, "skipped").Inc()
		return SubmitResult{OK: true, Skipped: true}, nil
	}
	in.Reason = strings.TrimSpace(in.Reason)
	in.ContentRef = strings.TrimSpace(in.ContentRef)
	if !config.IsContentType(in.ContentType) {
		return SubmitResult{}, ErrInvalidContentType
	}
	if in.Reason == "" {
		return SubmitResult{}, ErrReasonRequired
	}
	if in.ContentRef == "" {
		return SubmitResult{}, ErrContentNotFound
	}

	item, canonical, identifiers := e.locate(ctx, in.ContentType, in.ContentRef)
	if item != nil && in.ContentURL == "" {
		in.ContentURL = item.URL
	}

	if in.ReporterID != nil {
		dup, err := e.reports.HasDuplicate(ctx, *in.ReporterID, in.ContentType, identifiers)
		if err != nil {
			return SubmitResult{}, fmt.Errorf("duplicate check: %w", err)
		}
		if dup {
			metrics.ReportsSubmitted.WithLabelValues(in.ContentType, "duplicate").Inc()
			return SubmitResult{OK: true, Duplicate: true}, nil
		}
	}

	scale := e.siteScale.Scale(ctx, true)
	weight, err := e.trust.ComputeWeight(ctx, in.ReporterID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("compute report weight: %w", err)
	}

	report := &models.Report{
		ReporterID:  in.ReporterID,
		ContentType: in.ContentType,
		ContentID:   canonical,
		ContentRef:  in.ContentRef,
		ContentURL:  in.ContentURL,
		Reason:      in.Reason,
		Details:     strings.TrimSpace(in.Details),
		Weight:      weight.ReportWeight,
		Status:      models.ReportPending,
		Metadata: jsonMap(map[string]any{
			"site_scale":    scale,
			"canonical_id":  canonical,
			"identifiers":   identifiers,
			"role":          weight.Role,
			"trust_score":   weight.TrustScore,
			"content_found": item != nil,
		}),
	}
	if err := e.reports.Create(ctx, report); err != nil {
		if errors.Is(err, ErrDuplicateReport) {
			metrics.ReportsSubmitted.WithLabelValues(in.ContentType, "duplicate").Inc()
			return SubmitResult{OK: true, Duplicate: true}, nil
		}
		return SubmitResult{}, fmt.Errorf("create report: %w", err)
	}
	metrics.ReportsSubmitted.WithLabelValues(in.ContentType, "created").Inc()
	metrics.ReportWeight.Observe(report.Weight)

	id := report.ID
	res := SubmitResult{OK: true, ReportID: &id, ReportWeight: report.Weight}

	if weight.Profile != nil {
		if err := e.profiles.IncrementSubmitted(ctx, *in.ReporterID); err != nil {
			e.degraded("increment_submitted", err, "user_id", *in.ReporterID)
		}
	}

	threshold := e.aggregator.Threshold(in.ContentType, scale)
	res.WeightThreshold = threshold
	score, err := e.aggregator.Recompute(ctx, in.ContentType, canonical, slugOf(item), identifiers, threshold, scale)
	if err != nil {
		e.degraded("recompute", err, "content_type", in.ContentType, "content_id", canonical)
		return res, nil
	}
	if score == nil {
		return res, nil
	}
	res.WeightTotal = score.WeightTotal

	if item != nil {
		item.Identifiers = identifiers
		hidden, err := e.aggregator.MaybeAutoHide(ctx, item, score, threshold, scale, in.Meta)
		if err != nil {
			e.degraded("auto_hide", err, "content_type", in.ContentType, "content_id", canonical)
		}
		res.AutoHidden = hidden
	}
	return res, nil
}

// ResolveReports applies a moderator decision to every pending report
// against a content item, optionally hiding or restoring the item.
func (e *Engine) ResolveReports(ctx context.Context, in ResolveInput) (ResolveResult, error) {
	if !config.IsContentType(in.ContentType) {
		return ResolveResult{}, ErrInvalidContentType
	}
	if in.Resolution != models.ReportConfirmed && in.Resolution != models.ReportRejected {
		return ResolveResult{}, ErrInvalidResolution
	}
	if in.Action == "" {
		in.Action = ActionNone
	}
	if in.Action != ActionNone && in.Action != ActionHide && in.Action != ActionRestore {
		return ResolveResult{}, ErrInvalidAction
	}
	in.ContentRef = strings.TrimSpace(in.ContentRef)
	if !e.caps.Supports(database.TableReports) {
		return ResolveResult{Skipped: true}, nil
	}

	item, canonical, identifiers := e.locate(ctx, in.ContentType, in.ContentRef)

	switch in.Action {
	case ActionHide, ActionRestore:
		if item == nil {
			return ResolveResult{}, ErrContentNotFound
		}
		apply := e.content.Hide
		if in.Action == ActionRestore {
			apply = e.content.Restore
		}
		if err := apply(ctx, item); err != nil {
			return ResolveResult{}, fmt.Errorf("%s content: %w", in.Action, err)
		}
	}

	var res ResolveResult
	var err error
	res.Resolved, res.Reporters, err = e.aggregator.ResolveBatch(ctx, in.ContentType, identifiers, in.Resolution, in.ActorID, in.Reason)
	if err != nil {
		e.degraded("resolve", err, "content_type", in.ContentType, "content_id", canonical)
	}

	scale := e.siteScale.Scale(ctx, false)
	threshold := e.aggregator.Threshold(in.ContentType, scale)
	res.Score, err = e.aggregator.Recompute(ctx, in.ContentType, canonical, slugOf(item), identifiers, threshold, scale)
	if err != nil {
		e.degraded("recompute", err, "content_type", in.ContentType, "content_id", canonical)
	}

	if e.caps.Supports(database.TableModerationLogs) {
		m := map[string]any{
			"resolution":       in.Resolution,
			"content_action":   in.Action,
			"reports_resolved": res.Resolved,
			"reporters":        res.Reporters,
			"weight_threshold": threshold,
			"site_scale":       scale,
		}
		if res.Score != nil {
			m["weight_total"] = res.Score.WeightTotal
			m["reports_count"] = res.Score.ReportsCount
		}
		entry := &models.ModerationLog{
			Actor:       userActor(in.ActorID),
			ActorID:     in.ActorID,
			Action:      models.ActionResolveReports,
			ContentType: in.ContentType,
			ContentID:   canonical,
			Reason:      in.Reason,
			Metrics:     jsonMap(m),
			IP:          in.Meta.IP,
			Location:    in.Meta.Location,
			UserAgent:   in.Meta.UserAgent,
			CreatedAt:   e.now(),
		}
		if item != nil {
			entry.ContentURL = item.URL
		}
		if err := e.audit.Append(ctx, entry); err != nil {
			e.degraded("audit", err, "content_id", canonical)
		}
	}

	e.logger.Info("reports resolved",
		"content_type", in.ContentType, "content_id", canonical,
		"resolution", in.Resolution, "action", in.Action, "resolved", res.Resolved)
	return res, nil
}

// Inspect returns the stored moderation state of one content item without
// changing it.
func (e *Engine) Inspect(ctx context.Context, contentType, ref string) (*Inspection, error) {
	if !config.IsContentType(contentType) {
		return nil, ErrInvalidContentType
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrContentNotFound
	}
	item, canonical, identifiers := e.locate(ctx, contentType, ref)
	out := &Inspection{
		ContentType: contentType,
		ContentID:   canonical,
		Identifiers: identifiers,
		Found:       item != nil,
		Reports:     []models.Report{},
	}
	if item != nil {
		out.Title, out.URL, out.Hidden = item.Title, item.URL, item.Hidden
	}
	if e.caps.Supports(database.TableContentScores) {
		score, err := e.scores.Get(ctx, contentType, canonical)
		if err != nil {
			return nil, fmt.Errorf("load score: %w", err)
		}
		out.Score = score
	}
	if e.caps.Supports(database.TableReports) {
		reports, err := e.reports.ListForContent(ctx, contentType, identifiers)
		if err != nil {
			return nil, fmt.Errorf("load reports: %w", err)
		}
		if reports != nil {
			out.Reports = reports
		}
	}
	return out, nil
}

// locate resolves ref to its canonical id and full identifier set. Content
// that cannot be found is keyed by the raw reference.
func (e *Engine) locate(ctx context.Context, contentType, ref string) (*ContentItem, string, []string) {
	item, err := e.content.Resolve(ctx, contentType, ref)
	if err != nil {
		e.logger.Warn("content lookup failed, using raw reference", "content_type", contentType, "ref", ref, "error", err)
		item = nil
	}
	if item == nil {
		return nil, ref, []string{ref}
	}
	return item, item.ID, identifierSet(item.ID, append(item.Identifiers, ref))
}

func (e *Engine) degraded(stage string, err error, attrs ...any) {
	metrics.Degraded.WithLabelValues(stage).Inc()
	e.logger.Error("moderation side effect skipped", append([]any{"stage", stage, "error", err}, attrs...)...)
}

func slugOf(item *ContentItem) string {
	if item == nil {
		return ""
	}
	return item.Slug
}

func userActor(id *uuid.UUID) string {
	if id == nil {
		return "user:unknown"
	}
	return "user:" + id.String()
}
