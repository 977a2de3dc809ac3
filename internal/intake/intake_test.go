package intake

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"changemakers/internal/utils"
	"changemakers/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memApplications struct {
	records   map[string]*types.ApplicationRecord
	rows      []any
	createErr error
}

func newMemApplications() *memApplications {
	return &memApplications{records: map[string]*types.ApplicationRecord{}}
}

func (m *memApplications) CreateApplication(ctx context.Context, kind types.ApplicationKind, row any) error {
	if m.createErr != nil {
		return m.createErr
	}

	record := &types.ApplicationRecord{Kind: kind}
	switch app := row.(type) {
	case *types.JobApplication:
		record.ID, record.InitiativeID, record.Name, record.Email, record.ApplicationReview = app.ID, app.InitiativeID, app.FullName, app.Email, app.ApplicationReview
	case *types.AmbassadorApplication:
		record.ID, record.InitiativeID, record.Name, record.Email, record.ApplicationReview = app.ID, app.InitiativeID, app.FullName, app.Email, app.ApplicationReview
	case *types.Proposal:
		record.ID, record.InitiativeID, record.Name, record.Email, record.ApplicationReview = app.ID, app.InitiativeID, app.Name, app.Email, app.ApplicationReview
	case *types.ContentCreatorApplication:
		record.ID, record.InitiativeID, record.Name, record.Email, record.ApplicationReview = app.ID, app.InitiativeID, app.FullName, app.Email, app.ApplicationReview
	case *types.VolunteerApplication:
		record.ID, record.InitiativeID, record.Name, record.Email, record.ApplicationReview = app.ID, app.InitiativeID, app.FullName, app.Email, app.ApplicationReview
	default:
		return errors.New("unexpected row type")
	}

	m.rows = append(m.rows, row)
	m.records[string(kind)+"/"+record.ID] = record
	return nil
}

func (m *memApplications) Application(ctx context.Context, kind types.ApplicationKind, id string) (*types.ApplicationRecord, error) {
	record, ok := m.records[string(kind)+"/"+id]
	if !ok {
		return nil, types.ErrApplicationNotFound
	}
	cp := *record
	return &cp, nil
}

func (m *memApplications) ApplicationsByInitiative(ctx context.Context, kind types.ApplicationKind, initiativeID string) ([]*types.ApplicationRecord, error) {
	out := make([]*types.ApplicationRecord, 0)
	for _, record := range m.records {
		if record.Kind == kind && record.InitiativeID == initiativeID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *memApplications) UpdateApplicationStatus(ctx context.Context, kind types.ApplicationKind, id string, from, to types.ApplicationStatus, reviewerID string, at time.Time) error {
	record, ok := m.records[string(kind)+"/"+id]
	if !ok || record.Status != from {
		return types.ErrInvalidTransition
	}
	record.Status = to
	record.ReviewedBy = &reviewerID
	record.ReviewedAt = &at
	return nil
}

type memInitiatives map[string]*types.Initiative

func (m memInitiatives) Initiative(ctx context.Context, id string) (*types.Initiative, error) {
	initiative, ok := m[id]
	if !ok {
		return nil, types.ErrInitiativeNotFound
	}
	return initiative, nil
}

type memJobs map[string]*types.Job

func (m memJobs) OpenJob(ctx context.Context, initiativeID, jobID string) (*types.Job, error) {
	job, ok := m[jobID]
	if !ok || job.InitiativeID != initiativeID || !job.IsActive {
		return nil, types.ErrJobNotFound
	}
	return job, nil
}

type fixture struct {
	intake       *Intake
	applications *memApplications
}

func newFixture() *fixture {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	initiatives := memInitiatives{
		"borehole": {ID: "borehole", Status: types.InitiativeStatusPublished},
		"draft":    {ID: "draft", Status: types.InitiativeStatusDraft},
		"closed": {
			ID:                    "closed",
			Status:                types.InitiativeStatusActive,
			AcceptProposals:       utils.BoolPtr(false),
			AcceptContentCreators: utils.BoolPtr(false),
			AcceptAmbassadors:     utils.BoolPtr(false),
		},
	}
	jobs := memJobs{
		"driller": {ID: "driller", InitiativeID: "borehole", IsActive: true},
		"cook":    {ID: "cook", InitiativeID: "borehole", IsActive: false},
	}

	applications := newMemApplications()
	in := New(logger, applications, initiatives, jobs)
	in.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	return &fixture{intake: in, applications: applications}
}

func volunteer(initiativeID string) *types.VolunteerApplication {
	return &types.VolunteerApplication{
		InitiativeID:           initiativeID,
		FullName:               "Wanjiru Kamau",
		Email:                  "wanjiru@example.org",
		Skills:                 []string{"construction", " "},
		ExperienceLevel:        types.ExperienceIntermediate,
		AvailabilityDays:       []string{"saturday"},
		AvailabilityHours:      "mornings",
		CommitmentDuration:     "3 months",
		EmergencyContactName:   "Otieno",
		EmergencyContactPhone:  "+254700000000",
		BackgroundCheckConsent: true,
	}
}

func TestSubmitJobRejectsEmptyName(t *testing.T) {
	f := newFixture()

	err := f.intake.SubmitJob(context.Background(), &types.JobApplication{
		InitiativeID: "borehole",
		FullName:     "",
		Email:        "a@example.org",
		Motivation:   "I dig",
	})

	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "full_name", verr.Field)
	assert.Empty(t, f.applications.rows)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		submit func(in *Intake) error
		field  string
	}{
		{"bad email", func(in *Intake) error {
			return in.SubmitJob(context.Background(), &types.JobApplication{InitiativeID: "borehole", FullName: "A", Email: "not-an-email", Motivation: "m"})
		}, "email"},
		{"display name email", func(in *Intake) error {
			return in.SubmitJob(context.Background(), &types.JobApplication{InitiativeID: "borehole", FullName: "A", Email: "A <a@example.org>", Motivation: "m"})
		}, "email"},
		{"ambassador reach", func(in *Intake) error {
			return in.SubmitAmbassador(context.Background(), &types.AmbassadorApplication{InitiativeID: "borehole", FullName: "A", Email: "a@example.org", Motivation: "m"})
		}, "reach"},
		{"proposal subject", func(in *Intake) error {
			return in.SubmitProposal(context.Background(), &types.Proposal{InitiativeID: "borehole", Name: "A", Email: "a@example.org", Details: "d"})
		}, "subject"},
		{"content portfolio", func(in *Intake) error {
			return in.SubmitContentCreator(context.Background(), &types.ContentCreatorApplication{InitiativeID: "borehole", FullName: "A", Email: "a@example.org", ContentType: "video", Motivation: "m"})
		}, "portfolio"},
		{"volunteer skills", func(in *Intake) error {
			app := volunteer("borehole")
			app.Skills = []string{" "}
			return in.SubmitVolunteer(context.Background(), app)
		}, "skills"},
		{"volunteer experience", func(in *Intake) error {
			app := volunteer("borehole")
			app.ExperienceLevel = "guru"
			return in.SubmitVolunteer(context.Background(), app)
		}, "experience_level"},
		{"volunteer consent", func(in *Intake) error {
			app := volunteer("borehole")
			app.BackgroundCheckConsent = false
			return in.SubmitVolunteer(context.Background(), app)
		}, "background_check_consent"},
		{"closed job", func(in *Intake) error {
			return in.SubmitJob(context.Background(), &types.JobApplication{InitiativeID: "borehole", JobID: utils.StringPtr("cook"), FullName: "A", Email: "a@example.org", Motivation: "m"})
		}, "job_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			err := tt.submit(f.intake)

			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, f.applications.rows)
		})
	}
}

func TestSubmitRequiresPublicInitiative(t *testing.T) {
	f := newFixture()

	err := f.intake.SubmitVolunteer(context.Background(), volunteer("draft"))
	require.ErrorIs(t, err, types.ErrInitiativeNotFound)

	err = f.intake.SubmitVolunteer(context.Background(), volunteer("gone"))
	require.ErrorIs(t, err, types.ErrInitiativeNotFound)
	assert.Empty(t, f.applications.rows)
}

func TestSubmitRespectsChannelPreferences(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	err := f.intake.SubmitProposal(ctx, &types.Proposal{InitiativeID: "closed", Name: "A", Email: "a@example.org", Subject: "s", Details: "d"})
	require.ErrorIs(t, err, types.ErrChannelClosed)

	err = f.intake.SubmitAmbassador(ctx, &types.AmbassadorApplication{InitiativeID: "closed", FullName: "A", Email: "a@example.org", Reach: "10k", Motivation: "m"})
	require.ErrorIs(t, err, types.ErrChannelClosed)

	err = f.intake.SubmitContentCreator(ctx, &types.ContentCreatorApplication{InitiativeID: "closed", FullName: "A", Email: "a@example.org", ContentType: "video", Portfolio: "p", Motivation: "m"})
	require.ErrorIs(t, err, types.ErrChannelClosed)
	assert.Empty(t, f.applications.rows)

	require.NoError(t, f.intake.SubmitVolunteer(ctx, volunteer("closed")))
}

func TestSubmitJobWithOpenPosition(t *testing.T) {
	f := newFixture()
	app := &types.JobApplication{
		InitiativeID: "borehole",
		JobID:        utils.StringPtr("driller"),
		FullName:     "Kip",
		Email:        "kip@example.org",
		Motivation:   "I have a rig",
	}

	require.NoError(t, f.intake.SubmitJob(context.Background(), app))
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, types.ApplicationStatusPending, app.Status)
	assert.Len(t, f.applications.rows, 1)
}

func TestSubmitStoreFailureIsSingleMessage(t *testing.T) {
	f := newFixture()
	f.applications.createErr = errors.New("connection refused")

	err := f.intake.SubmitVolunteer(context.Background(), volunteer("borehole"))
	require.Error(t, err)
	assert.False(t, types.IsValidation(err))
	assert.Contains(t, err.Error(), "could not submit your application")
}

func TestVolunteerLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	app := volunteer("borehole")
	require.NoError(t, f.intake.SubmitVolunteer(ctx, app))
	assert.Equal(t, types.ApplicationStatusPending, app.Status)
	assert.Equal(t, []string{"construction"}, app.Skills)

	record, err := f.intake.Approve(ctx, types.ApplicationKindVolunteer, app.ID, "operator-1")
	require.NoError(t, err)
	assert.Equal(t, types.ApplicationStatusApproved, record.Status)
	assert.Equal(t, "operator-1", utils.PtrString(record.ReviewedBy))
	require.NotNil(t, record.ReviewedAt)

	record, err = f.intake.Activate(ctx, types.ApplicationKindVolunteer, app.ID, "operator-1")
	require.NoError(t, err)
	assert.Equal(t, types.ApplicationStatusActive, record.Status)

	_, err = f.intake.Withdraw(ctx, types.ApplicationKindVolunteer, app.ID, "operator-1")
	require.ErrorIs(t, err, types.ErrInvalidTransition)

	record, err = f.intake.Complete(ctx, types.ApplicationKindVolunteer, app.ID, "operator-1")
	require.NoError(t, err)
	assert.Equal(t, types.ApplicationStatusCompleted, record.Status)
}

func TestRejectedIsTerminal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	app := &types.Proposal{InitiativeID: "borehole", Name: "A", Email: "a@example.org", Subject: "s", Details: "d"}
	require.NoError(t, f.intake.SubmitProposal(ctx, app))

	_, err := f.intake.Reject(ctx, types.ApplicationKindProposal, app.ID, "operator-1")
	require.NoError(t, err)

	_, err = f.intake.Approve(ctx, types.ApplicationKindProposal, app.ID, "operator-1")
	require.ErrorIs(t, err, types.ErrInvalidTransition)
}

func TestTransitionUnknownApplication(t *testing.T) {
	f := newFixture()
	_, err := f.intake.Review(context.Background(), types.ApplicationKindJob, "nope", "operator-1")
	require.ErrorIs(t, err, types.ErrApplicationNotFound)

	_, err = f.intake.Review(context.Background(), types.ApplicationKindJob, "nope", "")
	assert.True(t, types.IsValidation(err))
}

func TestListApplications(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.intake.SubmitVolunteer(ctx, volunteer("borehole")))
	require.NoError(t, f.intake.SubmitVolunteer(ctx, volunteer("borehole")))

	records, err := f.intake.List(ctx, types.ApplicationKindVolunteer, "borehole")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = f.intake.List(ctx, "bogus", "borehole")
	assert.True(t, types.IsValidation(err))
}

func TestActionLookup(t *testing.T) {
	f := newFixture()
	for _, verb := range []string{"review", "approve", "reject", "activate", "complete", "withdraw"} {
		_, ok := f.intake.Action(verb)
		assert.True(t, ok, verb)
	}
	_, ok := f.intake.Action("delete")
	assert.False(t, ok)
}
