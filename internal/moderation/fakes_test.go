package moderation

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeUsers map[uuid.UUID]*models.User

func (f fakeUsers) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	return f[id], nil
}

type fakeActivity map[uuid.UUID]map[string]int64

func (f fakeActivity) CountActions(_ context.Context, id uuid.UUID) (map[string]int64, error) {
	return f[id], nil
}

type fakeProfiles struct {
	rows  map[uuid.UUID]*models.ReporterProfile
	saves int
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{rows: map[uuid.UUID]*models.ReporterProfile{}}
}

func (f *fakeProfiles) Get(_ context.Context, id uuid.UUID) (*models.ReporterProfile, error) {
	if p, ok := f.rows[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeProfiles) GetOrCreate(ctx context.Context, id uuid.UUID) (*models.ReporterProfile, error) {
	if _, ok := f.rows[id]; !ok {
		f.rows[id] = &models.ReporterProfile{UserID: id, TrustScore: 1, Weight: 1}
	}
	return f.Get(ctx, id)
}

func (f *fakeProfiles) Save(_ context.Context, p *models.ReporterProfile) error {
	f.saves++
	row := f.rows[p.UserID]
	row.ActivityPoints, row.TrustScore, row.Weight = p.ActivityPoints, p.TrustScore, p.Weight
	row.LastComputedAt, row.Metadata = p.LastComputedAt, p.Metadata
	return nil
}

func (f *fakeProfiles) IncrementSubmitted(_ context.Context, id uuid.UUID) error {
	f.rows[id].ReportsSubmitted++
	return nil
}

func (f *fakeProfiles) IncrementOutcome(_ context.Context, id uuid.UUID, resolution string, n int) error {
	p := f.rows[id]
	if p == nil {
		return nil
	}
	switch resolution {
	case models.ReportConfirmed:
		p.ReportsConfirmed += n
	case models.ReportRejected:
		p.ReportsRejected += n
	case models.ReportAutoHidden:
		p.ReportsAutoHidden += n
	}
	return nil
}

// fakeReports only backs the site scale estimator.
type fakeReports struct {
	ReportStore
	count int64
	err   error
	calls int
}

func (f *fakeReports) CountSince(context.Context, time.Time) (int64, error) {
	f.calls++
	return f.count, f.err
}
