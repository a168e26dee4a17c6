package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/noah-isme/cellgroup-api/internal/models"
	"github.com/noah-isme/cellgroup-api/internal/repository"
	"github.com/noah-isme/cellgroup-api/pkg/jobs"
)

func strPtr(value string) *string { return &value }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeGroupRepo struct {
	items     map[string]models.CellGroup
	findErr   error
	listErr   error
	lastQuery models.CellGroupFilter
}

func (f *fakeGroupRepo) FindByID(ctx context.Context, id string) (*models.CellGroup, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	group, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &group, nil
}

func (f *fakeGroupRepo) List(ctx context.Context, filter models.CellGroupFilter) ([]models.CellGroup, error) {
	f.lastQuery = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.CellGroup, 0, len(f.items))
	for _, g := range f.items {
		if filter.ZoneID != "" && g.ZoneID != filter.ZoneID {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeMemberRepo struct {
	byGroup map[string][]models.Member
	all     map[string]models.Member
	listErr error
	calls   int
}

func (f *fakeMemberRepo) ListByGroup(ctx context.Context, groupID string) ([]models.Member, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.byGroup[groupID], nil
}

func (f *fakeMemberRepo) FindByIDs(ctx context.Context, ids []string) ([]models.Member, error) {
	var out []models.Member
	for _, id := range ids {
		if m, ok := f.all[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeReportRepo struct {
	items     map[string]models.WeeklyReport
	listErr   error
	updateErr error
	listCalls int
	created   []models.WeeklyReport
}

func (f *fakeReportRepo) List(ctx context.Context, filter models.WeeklyReportFilter) ([]models.WeeklyReport, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.WeeklyReport
	for _, r := range f.items {
		if filter.CellGroupID != "" && r.CellGroupID != filter.CellGroupID {
			continue
		}
		if filter.DateFrom != nil && r.DateOfMeeting.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && r.DateOfMeeting.After(*filter.DateTo) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeReportRepo) FindByID(ctx context.Context, id string) (*models.WeeklyReport, error) {
	r, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (f *fakeReportRepo) Create(ctx context.Context, report *models.WeeklyReport) error {
	if f.items == nil {
		f.items = map[string]models.WeeklyReport{}
	}
	if report.ID == "" {
		report.ID = "generated"
	}
	report.CreatedAt = time.Now().UTC()
	report.UpdatedAt = report.CreatedAt
	f.items[report.ID] = *report
	f.created = append(f.created, *report)
	return nil
}

func (f *fakeReportRepo) Update(ctx context.Context, report *models.WeeklyReport, expected time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	current, ok := f.items[report.ID]
	if !ok {
		return sql.ErrNoRows
	}
	if !current.UpdatedAt.Equal(expected) {
		return repository.ErrStaleReport
	}
	report.UpdatedAt = expected.Add(time.Second)
	f.items[report.ID] = *report
	return nil
}

func (f *fakeReportRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

type fakeVisitorRepo struct {
	items   map[string]models.Visitor
	listErr error
}

func (f *fakeVisitorRepo) List(ctx context.Context, filter models.VisitorFilter) ([]models.Visitor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Visitor, 0, len(f.items))
	for _, v := range f.items {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeVisitorRepo) FindByID(ctx context.Context, id string) (*models.Visitor, error) {
	v, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &v, nil
}

func (f *fakeVisitorRepo) FindByIDs(ctx context.Context, ids []string) ([]models.Visitor, error) {
	var out []models.Visitor
	for _, id := range ids {
		if v, ok := f.items[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVisitorRepo) Create(ctx context.Context, visitor *models.Visitor) error {
	if f.items == nil {
		f.items = map[string]models.Visitor{}
	}
	visitor.ID = "v-new"
	f.items[visitor.ID] = *visitor
	return nil
}

func (f *fakeVisitorRepo) UpdateStatus(ctx context.Context, id string, status models.VisitorStatus) error {
	v, ok := f.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	v.Status = status
	f.items[id] = v
	return nil
}

func (f *fakeVisitorRepo) AdvanceFollowUp(ctx context.Context, id string, next models.FollowUpStatus) (models.VisitorStatus, error) {
	v, ok := f.items[id]
	if !ok || v.Status == models.VisitorStatusConverted {
		return "", sql.ErrNoRows
	}
	v.FollowUpStatus = next
	if v.Status == models.VisitorStatusNew {
		v.Status = models.VisitorStatusFollowedUp
	}
	f.items[id] = v
	return v.Status, nil
}

// fakeHistoryRepo applies the history append and the score write together or not at all.
type fakeHistoryRepo struct {
	groups   *fakeGroupRepo
	records  []models.HealthHistoryRecord
	scores   map[string]float64
	scoreErr error
}

func (f *fakeHistoryRepo) AppendAndScore(ctx context.Context, record *models.HealthHistoryRecord) error {
	if f.scoreErr != nil {
		return f.scoreErr
	}
	if f.groups != nil {
		if _, ok := f.groups.items[record.CellGroupID]; !ok {
			return sql.ErrNoRows
		}
	}
	if f.scores == nil {
		f.scores = map[string]float64{}
	}
	record.ID = "h-new"
	f.records = append(f.records, *record)
	f.scores[record.CellGroupID] = record.HealthScore
	return nil
}

func (f *fakeHistoryRepo) ListByGroup(ctx context.Context, groupID string) ([]models.HealthHistoryRecord, error) {
	var out []models.HealthHistoryRecord
	for _, r := range f.records {
		if r.CellGroupID == groupID {
			out = append(out, r)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	batches [][]models.Fact
}

func (r *recordingNotifier) Notify(ctx context.Context, facts []models.Fact) {
	r.batches = append(r.batches, facts)
}

type recordingDispatcher struct {
	jobs []jobs.Job
	err  error
}

func (r *recordingDispatcher) TryEnqueue(job jobs.Job) error {
	if r.err != nil {
		return r.err
	}
	r.jobs = append(r.jobs, job)
	return nil
}

type stubPublisher struct {
	pushed []models.Fact
	seen   map[string]bool
	err    error
}

func (s *stubPublisher) Publish(ctx context.Context, fact models.Fact) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	key := string(fact.Kind) + fact.EntityID + fact.Week
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	s.pushed = append(s.pushed, fact)
	return true, nil
}
