package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"changemakers/internal/initiative"
	"changemakers/internal/opportunity"
	"changemakers/pkg/types"

	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogRows backs both the initiative service and the job catalog.
type catalogRows struct {
	initiatives map[string]*types.Initiative
	jobs        []*types.Job
}

func (c *catalogRows) Initiative(ctx context.Context, id string) (*types.Initiative, error) {
	row, ok := c.initiatives[id]
	if !ok {
		return nil, types.ErrInitiativeNotFound
	}
	cp := *row
	return &cp, nil
}

func (c *catalogRows) InitiativesByStatus(ctx context.Context, statuses []types.InitiativeStatus, limit uint64) ([]*types.Initiative, error) {
	return nil, nil
}

func (c *catalogRows) InitiativesByChangemaker(ctx context.Context, changemakerID string) ([]*types.Initiative, error) {
	return nil, nil
}

func (c *catalogRows) CreateInitiative(ctx context.Context, initiative *types.Initiative) error {
	return nil
}

func (c *catalogRows) UpdateInitiative(ctx context.Context, initiative *types.Initiative) error {
	return nil
}

func (c *catalogRows) DeleteInitiative(ctx context.Context, id string) (int64, error) {
	return 0, nil
}

func (c *catalogRows) MilestonesByInitiative(ctx context.Context, initiativeID string) ([]*types.Milestone, error) {
	return []*types.Milestone{}, nil
}

func (c *catalogRows) CreateMilestones(ctx context.Context, milestones []*types.Milestone) error {
	return nil
}

func (c *catalogRows) DeleteMilestonesByInitiative(ctx context.Context, initiativeID string) (int64, error) {
	return 0, nil
}

func (c *catalogRows) Job(ctx context.Context, jobID string) (*types.Job, error) {
	return nil, types.ErrJobNotFound
}

func (c *catalogRows) ActiveJobsByInitiative(ctx context.Context, initiativeID string) ([]*types.Job, error) {
	out := make([]*types.Job, 0)
	for _, job := range c.jobs {
		if job.InitiativeID == initiativeID && job.IsActive {
			out = append(out, job)
		}
	}
	return out, nil
}

func (c *catalogRows) CreateJobs(ctx context.Context, jobs []*types.Job) error {
	return nil
}

func (c *catalogRows) SetJobActive(ctx context.Context, initiativeID, jobID string, active bool) error {
	return nil
}

func (c *catalogRows) UpdatePreferences(ctx context.Context, initiativeID string, prefs types.OpportunityPreferences) error {
	return nil
}

func newCatalogServer(t *testing.T, rows *catalogRows) *Service {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	config := &types.Config{
		ServerPort:       8080,
		SessionMaxAgeSec: 3600,
		CookieHashKey:    base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
		CookieBlockKey:   base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
	}

	service, err := New(config, logger, &fakeCognito{}, Dependencies{
		Initiatives: initiative.NewService(logger, rows, rows, nil),
		Catalog:     opportunity.NewCatalog(logger, rows, rows),
	}, emptyKeySet{}, "https://issuer.test/.well-known/jwks.json")
	require.NoError(t, err)

	return service
}

func TestListJobsOnlyForPublicInitiatives(t *testing.T) {
	rows := &catalogRows{
		initiatives: map[string]*types.Initiative{
			"borehole": {ID: "borehole", Status: types.InitiativeStatusPublished},
			"sketch":   {ID: "sketch", Status: types.InitiativeStatusDraft},
		},
		jobs: []*types.Job{
			{ID: "job-1", InitiativeID: "borehole", Title: "Driller", IsActive: true, CreatedAt: time.Unix(1, 0)},
			{ID: "job-2", InitiativeID: "sketch", Title: "Surveyor", IsActive: true, CreatedAt: time.Unix(2, 0)},
			{ID: "job-3", InitiativeID: "gone", Title: "Mason", IsActive: true, CreatedAt: time.Unix(3, 0)},
		},
	}
	handler := newCatalogServer(t, rows).Handler()

	get := func(id string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/initiatives/"+id+"/jobs", nil))
		return rec
	}

	rec := get("borehole")
	require.Equal(t, http.StatusOK, rec.Code)
	var jobs []*types.Job
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "Driller", jobs[0].Title)

	assert.Equal(t, http.StatusNotFound, get("sketch").Code)
	assert.Equal(t, http.StatusNotFound, get("gone").Code, "orphaned postings stay hidden")
}

func TestCarryOverKeepsOmittedFields(t *testing.T) {
	no := false
	yes := true
	existing := &types.Initiative{
		ID:                "borehole",
		ChangemakerID:     "cm-1",
		CreatedAt:         time.Unix(10, 0),
		ImageURLs:         []string{"https://cdn.test/a.jpg"},
		AcceptProposals:   &no,
		AcceptAmbassadors: &no,
	}

	edited := &types.Initiative{ID: "other", ChangemakerID: "cm-2", AcceptAmbassadors: &yes}
	carryOver(edited, existing)

	assert.Equal(t, "borehole", edited.ID)
	assert.Equal(t, "cm-1", edited.ChangemakerID)
	assert.Equal(t, existing.CreatedAt, edited.CreatedAt)
	assert.Equal(t, existing.ImageURLs, edited.ImageURLs)
	require.NotNil(t, edited.AcceptProposals)
	assert.False(t, *edited.AcceptProposals)
	assert.Nil(t, edited.AcceptContentCreators)
	require.NotNil(t, edited.AcceptAmbassadors)
	assert.True(t, *edited.AcceptAmbassadors)
}
