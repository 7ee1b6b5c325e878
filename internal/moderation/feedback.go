package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
)

// FeedbackLoop folds report outcomes back into reporter trust.
type FeedbackLoop struct {
	caps     Capabilities
	profiles ProfileStore
	trust    *TrustModel
	logger   *slog.Logger
}

func NewFeedbackLoop(caps Capabilities, profiles ProfileStore, trust *TrustModel, logger *slog.Logger) *FeedbackLoop {
	return &FeedbackLoop{caps: caps, profiles: profiles, trust: trust, logger: logger}
}

// ApplyResolution adds counts[reporter] to the outcome counter named by
// resolution and recomputes each reporter's trust once.
func (f *FeedbackLoop) ApplyResolution(ctx context.Context, counts map[uuid.UUID]int, resolution string) error {
	switch resolution {
	case models.ReportConfirmed, models.ReportRejected, models.ReportAutoHidden:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidResolution, resolution)
	}
	if !f.caps.Supports(database.TableReporterProfiles) || len(counts) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(counts))
	for id, n := range counts {
		if n > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	var errs []error
	for _, id := range ids {
		if err := f.profiles.IncrementOutcome(ctx, id, resolution, counts[id]); err != nil {
			errs = append(errs, fmt.Errorf("reporter %s: %w", id, err))
			continue
		}
		res, err := f.trust.Recalculate(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("reporter %s: %w", id, err))
			continue
		}
		f.logger.Debug("reporter trust recalculated",
			"user_id", id, "resolution", resolution, "count", counts[id],
			"trust_score", res.TrustScore, "weight", res.ReporterWeight)
	}
	return errors.Join(errs...)
}
