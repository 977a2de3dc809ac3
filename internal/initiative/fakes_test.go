package initiative

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"changemakers/internal/identity"
	"changemakers/pkg/types"

	"github.com/sirupsen/logrus"
)

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testSession() *identity.Session {
	return identity.NewSession("sess-1", "acct-1", "ada@example.org", nil)
}

type memInitiatives struct {
	mu    sync.Mutex
	rows  map[string]*types.Initiative
	seq   int
	fails map[string]error
}

func newMemInitiatives() *memInitiatives {
	return &memInitiatives{rows: map[string]*types.Initiative{}, fails: map[string]error{}}
}

func (m *memInitiatives) Initiative(ctx context.Context, id string) (*types.Initiative, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fails["get"]; err != nil {
		return nil, err
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, types.ErrInitiativeNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *memInitiatives) InitiativesByStatus(ctx context.Context, statuses []types.InitiativeStatus, limit uint64) ([]*types.Initiative, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.Initiative, 0)
	for _, row := range m.rows {
		for _, s := range statuses {
			if row.Status == s {
				cp := *row
				out = append(out, &cp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memInitiatives) InitiativesByChangemaker(ctx context.Context, changemakerID string) ([]*types.Initiative, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.Initiative, 0)
	for _, row := range m.rows {
		if row.ChangemakerID == changemakerID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memInitiatives) CreateInitiative(ctx context.Context, initiative *types.Initiative) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fails["create"]; err != nil {
		return err
	}
	m.seq++
	initiative.ID = fmt.Sprintf("init-%d", m.seq)
	initiative.CreatedAt = time.Unix(int64(m.seq), 0)
	initiative.UpdatedAt = initiative.CreatedAt
	cp := *initiative
	cp.Milestones = nil
	m.rows[initiative.ID] = &cp
	return nil
}

func (m *memInitiatives) UpdateInitiative(ctx context.Context, initiative *types.Initiative) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.rows[initiative.ID]
	if !ok {
		return types.ErrInitiativeNotFound
	}
	cp := *initiative
	cp.CreatedAt = existing.CreatedAt
	cp.Milestones = nil
	m.rows[initiative.ID] = &cp
	return nil
}

func (m *memInitiatives) DeleteInitiative(ctx context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return 0, nil
	}
	delete(m.rows, id)
	return 1, nil
}

type memMilestones struct {
	mu        sync.Mutex
	rows      []*types.Milestone
	seq       int
	createErr error
	creates   int
}

func (m *memMilestones) MilestonesByInitiative(ctx context.Context, initiativeID string) ([]*types.Milestone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.Milestone, 0)
	for _, row := range m.rows {
		if row.InitiativeID == initiativeID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memMilestones) CreateMilestones(ctx context.Context, milestones []*types.Milestone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	for i, ms := range milestones {
		m.seq++
		ms.ID = fmt.Sprintf("ms-%d", m.seq)
		ms.Position = i
		cp := *ms
		m.rows = append(m.rows, &cp)
	}
	return nil
}

func (m *memMilestones) DeleteMilestonesByInitiative(ctx context.Context, initiativeID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	var n int64
	for _, row := range m.rows {
		if row.InitiativeID == initiativeID {
			n++
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	return n, nil
}

type staticResolver struct {
	id  string
	err error
}

func (r staticResolver) ResolveChangemaker(ctx context.Context, sess *identity.Session) (string, error) {
	if _, err := sess.AccountID(); err != nil {
		return "", err
	}
	return r.id, r.err
}

type recordingJobs struct {
	got []types.JobDraft
	err error
}

func (r *recordingJobs) AddJobs(ctx context.Context, initiativeID string, jobs []types.JobDraft) ([]*types.Job, error) {
	r.got = append(r.got, jobs...)
	return nil, r.err
}

type memBlobs struct {
	failing map[string]bool
	keys    []string
	deleted []string
}

func (b *memBlobs) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	for name := range b.failing {
		if strings.HasSuffix(key, name) {
			return "", errors.New("upload refused")
		}
	}
	b.keys = append(b.keys, key)
	return b.PublicURL(key), nil
}

func (b *memBlobs) PublicURL(key string) string {
	return "https://blobs.test/" + key
}

func (b *memBlobs) Delete(ctx context.Context, key string) error {
	b.deleted = append(b.deleted, key)
	return nil
}

type stubGeocoder struct {
	address string
	err     error
	calls   int
}

func (g *stubGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	g.calls++
	return g.address, g.err
}

func (g *stubGeocoder) SearchPlaces(ctx context.Context, query string) ([]types.Place, error) {
	return nil, nil
}

type memDrafts struct {
	mu   sync.Mutex
	rows map[string]*types.SavedDraft
}

func newMemDrafts() *memDrafts {
	return &memDrafts{rows: map[string]*types.SavedDraft{}}
}

func (m *memDrafts) Draft(ctx context.Context, key string) (*types.SavedDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[key]
	if !ok {
		return nil, types.ErrDraftNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDrafts) SaveDraft(ctx context.Context, draft *types.SavedDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	draft.SavedAt = time.Now()
	cp := *draft
	m.rows[draft.SessionKey] = &cp
	return nil
}

func (m *memDrafts) DeleteDraft(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, key)
	return nil
}
