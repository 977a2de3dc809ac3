package initiative

import (
	"context"
	"errors"
	"testing"

	"changemakers/internal/geo"
	"changemakers/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	initiatives *memInitiatives
	milestones  *memMilestones
	service     *Service
}

func newFixture(opts ...Option) *serviceFixture {
	f := &serviceFixture{
		initiatives: newMemInitiatives(),
		milestones:  &memMilestones{},
	}
	f.service = NewService(testLogger(), f.initiatives, f.milestones, staticResolver{id: "cm-1"}, opts...)
	return f
}

func boreholeDraft() *types.InitiativeDraft {
	return &types.InitiativeDraft{
		Title:        "Borehole X",
		Category:     types.CategoryWater,
		TargetAmount: 500000,
		RaisedAmount: 0,
		Coordinate:   &types.Coordinate{Lat: -1.29, Lng: 36.82},
		Milestones: []types.MilestoneDraft{
			{Title: "Survey", TargetDate: "2026-03-01", Status: types.MilestoneStatusPending},
		},
	}
}

func TestCreateDefaultsToPublished(t *testing.T) {
	f := newFixture()

	result, err := f.service.Create(context.Background(), testSession(), boreholeDraft())
	require.NoError(t, err)
	require.False(t, result.Degraded())

	created := result.Initiative
	assert.Equal(t, types.InitiativeStatusPublished, created.Status)
	assert.Equal(t, "cm-1", created.ChangemakerID)
	require.Len(t, created.Milestones, 1)
	assert.Equal(t, "Survey", created.Milestones[0].Title)
	assert.Equal(t, "2026-03-01", created.Milestones[0].TargetDate)

	summary := Summarize(created)
	assert.Equal(t, 0.0, summary.MilestoneProgress)
	assert.Equal(t, 0.0, summary.FundingProgress)

	created.RaisedAmount = 250000
	assert.Equal(t, 50.0, FundingProgress(created))
}

func TestCreateRejectsBadCoordinatesBeforeWriting(t *testing.T) {
	tests := []struct {
		name       string
		coordinate *types.Coordinate
	}{
		{name: "missing", coordinate: nil},
		{name: "latitude too high", coordinate: &types.Coordinate{Lat: 90.5, Lng: 10}},
		{name: "longitude too low", coordinate: &types.Coordinate{Lat: 0, Lng: -181}},
		{name: "placeholder", coordinate: &types.Coordinate{Lat: geo.Placeholder.Lat, Lng: geo.Placeholder.Lng}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			draft := boreholeDraft()
			draft.Coordinate = tt.coordinate

			_, err := f.service.Create(context.Background(), testSession(), draft)
			require.Error(t, err)
			assert.True(t, types.IsValidation(err))
			assert.Empty(t, f.initiatives.rows)
			assert.Zero(t, f.milestones.creates)
		})
	}
}

func TestCreateAcceptsBoundaryCoordinates(t *testing.T) {
	for _, c := range []types.Coordinate{{Lat: 90, Lng: 180}, {Lat: -90, Lng: -180}, {Lat: 0, Lng: 0}} {
		f := newFixture()
		draft := boreholeDraft()
		draft.Coordinate = &c

		_, err := f.service.Create(context.Background(), testSession(), draft)
		require.NoError(t, err, "coordinate %+v", c)
	}
}

func TestCreateValidatesFields(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(d *types.InitiativeDraft)
		field string
	}{
		{"blank title", func(d *types.InitiativeDraft) { d.Title = "  " }, "title"},
		{"unknown category", func(d *types.InitiativeDraft) { d.Category = "space" }, "category"},
		{"negative target", func(d *types.InitiativeDraft) { d.TargetAmount = -1 }, "targetAmount"},
		{"negative raised", func(d *types.InitiativeDraft) { d.RaisedAmount = -5 }, "raisedAmount"},
		{"untitled milestone", func(d *types.InitiativeDraft) { d.Milestones[0].Title = "" }, "milestones"},
		{"short geofence", func(d *types.InitiativeDraft) {
			d.Geofence = []types.Coordinate{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}
		}, "geofence"},
		{"paybill without account", func(d *types.InitiativeDraft) {
			d.PaymentDetails = &types.PaymentDetails{Method: types.PaymentMethodMpesaPaybill, PaybillNumber: "123"}
		}, "paymentDetails"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			draft := boreholeDraft()
			tt.edit(draft)

			_, err := f.service.Create(context.Background(), testSession(), draft)
			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, f.initiatives.rows)
		})
	}
}

func TestCreateKeepsInitiativeWhenMilestonesFail(t *testing.T) {
	f := newFixture()
	f.milestones.createErr = errors.New("connection reset")

	result, err := f.service.Create(context.Background(), testSession(), boreholeDraft())
	require.NoError(t, err)
	assert.True(t, result.Degraded())
	assert.Contains(t, result.MilestoneError, "connection reset")
	assert.Empty(t, result.Initiative.Milestones)
	assert.Len(t, f.initiatives.rows, 1)
}

func TestCreateIsolatesImageFailures(t *testing.T) {
	blobs := &memBlobs{failing: map[string]bool{"broken.png": true}}
	f := newFixture(WithBlobStore(blobs))

	draft := boreholeDraft()
	draft.PendingImages = []types.ImageUpload{
		{FileName: "site.jpg", ContentType: "image/jpeg", Data: []byte("a")},
		{FileName: "broken.png", ContentType: "image/png", Data: []byte("b")},
		{FileName: "crew.jpg", ContentType: "image/jpeg", Data: []byte("c")},
	}

	result, err := f.service.Create(context.Background(), testSession(), draft)
	require.NoError(t, err)
	assert.Len(t, result.Initiative.ImageURLs, 2)
	assert.Equal(t, []string{"broken.png"}, result.FailedImages)
	for _, url := range result.Initiative.ImageURLs {
		assert.Contains(t, url, "initiatives/cm-1/")
	}
}

func TestCreateAutofillsAreaFromGeocoder(t *testing.T) {
	geocoder := &stubGeocoder{address: "Kibera, Nairobi"}
	f := newFixture(WithGeocoder(geocoder))

	result, err := f.service.Create(context.Background(), testSession(), boreholeDraft())
	require.NoError(t, err)
	assert.Equal(t, "Kibera, Nairobi", result.Initiative.Area)

	geocoder.err = errors.New("rate limited")
	result, err = f.service.Create(context.Background(), testSession(), boreholeDraft())
	require.NoError(t, err)
	assert.Empty(t, result.Initiative.Area)

	draft := boreholeDraft()
	draft.Area = "Given"
	calls := geocoder.calls
	result, err = f.service.Create(context.Background(), testSession(), draft)
	require.NoError(t, err)
	assert.Equal(t, "Given", result.Initiative.Area)
	assert.Equal(t, calls, geocoder.calls)
}

func TestCreatePassesJobsToCatalog(t *testing.T) {
	jobs := &recordingJobs{}
	f := newFixture(WithJobCatalog(jobs))

	draft := boreholeDraft()
	draft.Jobs = []types.JobDraft{{Title: "Driller"}}

	result, err := f.service.Create(context.Background(), testSession(), draft)
	require.NoError(t, err)
	assert.Equal(t, []types.JobDraft{{Title: "Driller"}}, jobs.got)
	assert.Empty(t, result.JobError)
}

func TestCreateFailsWhenStoreRejectsInitiative(t *testing.T) {
	f := newFixture()
	f.initiatives.fails["create"] = errors.New("permission denied")

	_, err := f.service.Create(context.Background(), testSession(), boreholeDraft())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not save the initiative")
	assert.Zero(t, f.milestones.creates)
}

func TestCreateRemovesUploadsWhenInsertFails(t *testing.T) {
	blobs := &memBlobs{}
	f := newFixture(WithBlobStore(blobs))
	f.initiatives.fails["create"] = errors.New("permission denied")

	draft := boreholeDraft()
	draft.PendingImages = []types.ImageUpload{
		{FileName: "site.jpg", ContentType: "image/jpeg", Data: []byte("a")},
		{FileName: "crew.jpg", ContentType: "image/jpeg", Data: []byte("b")},
	}

	_, err := f.service.Create(context.Background(), testSession(), draft)
	require.Error(t, err)
	require.Len(t, blobs.keys, 2)
	assert.ElementsMatch(t, blobs.keys, blobs.deleted)
}

func TestCreateWithInvalidatedSession(t *testing.T) {
	f := newFixture()
	sess := testSession()
	sess.Invalidate()

	_, err := f.service.Create(context.Background(), sess, boreholeDraft())
	require.ErrorIs(t, err, types.ErrSessionInvalid)
}

func TestRoundTripMilestones(t *testing.T) {
	f := newFixture()
	draft := boreholeDraft()
	draft.Milestones = append(draft.Milestones,
		types.MilestoneDraft{Title: "Drill", TargetDate: "2026-05-01", Status: types.MilestoneStatusInProgress},
		types.MilestoneDraft{Title: "Handover", TargetDate: "2026-08-01"},
	)

	result, err := f.service.Create(context.Background(), testSession(), draft)
	require.NoError(t, err)

	got, err := f.service.GetByID(context.Background(), result.Initiative.ID)
	require.NoError(t, err)
	require.Len(t, got.Milestones, len(draft.Milestones))
	for i, want := range draft.Milestones {
		assert.Equal(t, want.Title, got.Milestones[i].Title)
		assert.Equal(t, want.TargetDate, got.Milestones[i].TargetDate)
	}
	assert.Equal(t, types.MilestoneStatusPending, got.Milestones[2].Status)
}

func TestUpdateReplacesMilestonesIdempotently(t *testing.T) {
	f := newFixture()
	result, err := f.service.Create(context.Background(), testSession(), boreholeDraft())
	require.NoError(t, err)

	edited := result.Initiative
	edited.Milestones = []*types.Milestone{
		{Title: "Survey", TargetDate: "2026-03-01", Status: types.MilestoneStatusCompleted},
		{Title: "Drill", TargetDate: "2026-05-01", Status: types.MilestoneStatusPending},
	}

	first, err := f.service.Update(context.Background(), edited)
	require.NoError(t, err)
	second, err := f.service.Update(context.Background(), edited)
	require.NoError(t, err)

	assert.Len(t, second.Milestones, 2)
	assert.Equal(t, 50.0, MilestoneProgress(first.Milestones))
	assert.Equal(t, MilestoneProgress(first.Milestones), MilestoneProgress(second.Milestones))
}

func TestUpdateTrimsMilestoneFields(t *testing.T) {
	f := newFixture()
	result, err := f.service.Create(context.Background(), testSession(), boreholeDraft())
	require.NoError(t, err)

	note := "  dig deeper  "
	edited := result.Initiative
	edited.Milestones = []*types.Milestone{
		{Title: "  Drill ", TargetDate: " 2026-05-01  ", Description: &note},
	}

	got, err := f.service.Update(context.Background(), edited)
	require.NoError(t, err)
	require.Len(t, got.Milestones, 1)
	assert.Equal(t, "Drill", got.Milestones[0].Title)
	assert.Equal(t, "2026-05-01", got.Milestones[0].TargetDate)
	require.NotNil(t, got.Milestones[0].Description)
	assert.Equal(t, "dig deeper", *got.Milestones[0].Description)
}

func TestUpdateMissingInitiative(t *testing.T) {
	f := newFixture()
	_, err := f.service.Update(context.Background(), &types.Initiative{
		ID:                 "nope",
		Title:              "x",
		Category:           types.CategoryOther,
		Status:             types.InitiativeStatusDraft,
		InitiativeLocation: types.InitiativeLocation{Latitude: 1, Longitude: 1},
	})
	require.ErrorIs(t, err, types.ErrInitiativeNotFound)
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	f := newFixture()
	got, err := f.service.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListPublicFiltersStatusesAndLimits(t *testing.T) {
	f := newFixture(WithPublicListLimit(2))
	for _, status := range []types.InitiativeStatus{
		types.InitiativeStatusDraft,
		types.InitiativeStatusPublished,
		types.InitiativeStatusStalled,
		types.InitiativeStatusActive,
		types.InitiativeStatusCompleted,
	} {
		draft := boreholeDraft()
		draft.Status = status
		_, err := f.service.Create(context.Background(), testSession(), draft)
		require.NoError(t, err)
	}

	list, err := f.service.ListPublic(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, types.InitiativeStatusCompleted, list[0].Status)
	assert.Equal(t, types.InitiativeStatusActive, list[1].Status)
	assert.Len(t, list[0].Milestones, 1)
}

func TestDeleteReportsWhetherRowExisted(t *testing.T) {
	f := newFixture()
	result, err := f.service.Create(context.Background(), testSession(), boreholeDraft())
	require.NoError(t, err)

	deleted, err := f.service.Delete(context.Background(), result.Initiative.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = f.service.Delete(context.Background(), result.Initiative.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
