// Package intake accepts engagement applications against public initiatives
// and moves them through operator review.
package intake

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"changemakers/internal/opportunity"
	"changemakers/internal/store"
	"changemakers/internal/utils"
	"changemakers/pkg/types"

	"github.com/sirupsen/logrus"
)

type ApplicationStore interface {
	CreateApplication(ctx context.Context, kind types.ApplicationKind, row any) error
	Application(ctx context.Context, kind types.ApplicationKind, applicationID string) (*types.ApplicationRecord, error)
	ApplicationsByInitiative(ctx context.Context, kind types.ApplicationKind, initiativeID string) ([]*types.ApplicationRecord, error)
	UpdateApplicationStatus(ctx context.Context, kind types.ApplicationKind, applicationID string, from, to types.ApplicationStatus, reviewerID string, at time.Time) error
}

type InitiativeLookup interface {
	Initiative(ctx context.Context, initiativeID string) (*types.Initiative, error)
}

type JobLookup interface {
	OpenJob(ctx context.Context, initiativeID, jobID string) (*types.Job, error)
}

type Intake struct {
	logger       logrus.FieldLogger
	applications ApplicationStore
	initiatives  InitiativeLookup
	jobs         JobLookup

	now func() time.Time
}

func New(logger logrus.FieldLogger, applications ApplicationStore, initiatives InitiativeLookup, jobs JobLookup) *Intake {
	return &Intake{
		logger:       logger,
		applications: applications,
		initiatives:  initiatives,
		jobs:         jobs,
		now:          time.Now,
	}
}

func (i *Intake) SubmitJob(ctx context.Context, app *types.JobApplication) error {
	if err := firstError(
		required("full_name", app.FullName),
		validEmail(app.Email),
		required("motivation", app.Motivation),
	); err != nil {
		return err
	}

	initiative, err := i.openInitiative(ctx, app.InitiativeID, types.ApplicationKindJob)
	if err != nil {
		return err
	}

	app.JobID = utils.TrimmedPtr(utils.PtrString(app.JobID))
	if app.JobID != nil {
		if _, err := i.jobs.OpenJob(ctx, initiative.ID, *app.JobID); err != nil {
			if errors.Is(err, types.ErrJobNotFound) {
				return types.NewValidationError("job_id", "this position is no longer open")
			}
			return i.storeFailure(err, types.ApplicationKindJob, app.InitiativeID)
		}
	}

	app.ID = utils.NanoID()
	app.ApplicationReview = i.pendingReview()

	return i.insert(ctx, types.ApplicationKindJob, app.InitiativeID, app)
}

func (i *Intake) SubmitAmbassador(ctx context.Context, app *types.AmbassadorApplication) error {
	if err := firstError(
		required("full_name", app.FullName),
		validEmail(app.Email),
		required("reach", app.Reach),
		required("motivation", app.Motivation),
	); err != nil {
		return err
	}

	if _, err := i.openInitiative(ctx, app.InitiativeID, types.ApplicationKindAmbassador); err != nil {
		return err
	}

	app.ID = utils.NanoID()
	app.InitiativeRemovedAt = nil
	app.ApplicationReview = i.pendingReview()

	return i.insert(ctx, types.ApplicationKindAmbassador, app.InitiativeID, app)
}

func (i *Intake) SubmitProposal(ctx context.Context, app *types.Proposal) error {
	if err := firstError(
		required("name", app.Name),
		validEmail(app.Email),
		required("subject", app.Subject),
		required("details", app.Details),
	); err != nil {
		return err
	}

	if _, err := i.openInitiative(ctx, app.InitiativeID, types.ApplicationKindProposal); err != nil {
		return err
	}

	app.ID = utils.NanoID()
	app.Links = utils.TrimmedPtr(utils.PtrString(app.Links))
	app.InitiativeRemovedAt = nil
	app.ApplicationReview = i.pendingReview()

	return i.insert(ctx, types.ApplicationKindProposal, app.InitiativeID, app)
}

func (i *Intake) SubmitContentCreator(ctx context.Context, app *types.ContentCreatorApplication) error {
	if err := firstError(
		required("full_name", app.FullName),
		validEmail(app.Email),
		required("content_type", app.ContentType),
		required("portfolio", app.Portfolio),
		required("motivation", app.Motivation),
	); err != nil {
		return err
	}

	if _, err := i.openInitiative(ctx, app.InitiativeID, types.ApplicationKindContentCreator); err != nil {
		return err
	}

	app.ID = utils.NanoID()
	app.InitiativeRemovedAt = nil
	app.ApplicationReview = i.pendingReview()

	return i.insert(ctx, types.ApplicationKindContentCreator, app.InitiativeID, app)
}

func (i *Intake) SubmitVolunteer(ctx context.Context, app *types.VolunteerApplication) error {
	if err := validateVolunteer(app); err != nil {
		return err
	}

	if _, err := i.openInitiative(ctx, app.InitiativeID, types.ApplicationKindVolunteer); err != nil {
		return err
	}

	app.ID = utils.NanoID()
	app.Skills = compact(app.Skills)
	app.AvailabilityDays = compact(app.AvailabilityDays)
	app.PreferredRoles = compact(app.PreferredRoles)
	app.Languages = compact(app.Languages)
	app.ApplicationReview = i.pendingReview()

	return i.insert(ctx, types.ApplicationKindVolunteer, app.InitiativeID, app)
}

func validateVolunteer(app *types.VolunteerApplication) error {
	if err := firstError(
		required("full_name", app.FullName),
		validEmail(app.Email),
	); err != nil {
		return err
	}

	if len(compact(app.Skills)) == 0 && utils.Blank(utils.PtrString(app.OtherSkills)) {
		return types.NewValidationError("skills", "pick at least one skill")
	}
	if !app.ExperienceLevel.IsValid() {
		return types.NewValidationError("experience_level", "pick an experience level")
	}
	if len(compact(app.AvailabilityDays)) == 0 {
		return types.NewValidationError("availability_days", "pick at least one day")
	}

	if err := firstError(
		required("availability_hours", app.AvailabilityHours),
		required("commitment_duration", app.CommitmentDuration),
		required("emergency_contact_name", app.EmergencyContactName),
		required("emergency_contact_phone", app.EmergencyContactPhone),
	); err != nil {
		return err
	}

	if !app.BackgroundCheckConsent {
		return types.NewValidationError("background_check_consent", "consent is required to volunteer")
	}

	return nil
}

// openInitiative loads the initiative and checks it is public and has the
// channel for kind enabled.
func (i *Intake) openInitiative(ctx context.Context, initiativeID string, kind types.ApplicationKind) (*types.Initiative, error) {
	if utils.Blank(initiativeID) {
		return nil, types.NewValidationError("initiative_id", "is required")
	}

	initiative, err := i.initiatives.Initiative(ctx, initiativeID)
	if err != nil {
		if errors.Is(err, types.ErrInitiativeNotFound) {
			return nil, err
		}
		return nil, i.storeFailure(err, kind, initiativeID)
	}

	if !initiative.Status.IsPublic() {
		return nil, types.ErrInitiativeNotFound
	}

	if !opportunity.Accepts(initiative, kind) {
		return nil, fmt.Errorf("%w: %s", types.ErrChannelClosed, strings.ReplaceAll(string(kind), "_", " "))
	}

	return initiative, nil
}

func (i *Intake) pendingReview() types.ApplicationReview {
	now := i.now()
	return types.ApplicationReview{
		Status:    types.ApplicationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (i *Intake) insert(ctx context.Context, kind types.ApplicationKind, initiativeID string, row any) error {
	if err := i.applications.CreateApplication(ctx, kind, row); err != nil {
		return i.storeFailure(err, kind, initiativeID)
	}

	i.logger.WithFields(logrus.Fields{
		"kind":          kind,
		"initiative_id": initiativeID,
	}).Info("application received")

	return nil
}

func (i *Intake) storeFailure(err error, kind types.ApplicationKind, initiativeID string) error {
	i.logger.WithError(err).WithFields(store.ErrorFields(err)).WithFields(logrus.Fields{
		"kind":          kind,
		"initiative_id": initiativeID,
	}).Error("failed to submit application")

	return fmt.Errorf("we could not submit your application, please try again: %w", err)
}

func required(field, value string) error {
	if utils.Blank(value) {
		return types.NewValidationError(field, "is required")
	}
	return nil
}

func validEmail(value string) error {
	if utils.Blank(value) {
		return types.NewValidationError("email", "is required")
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(value))
	if err != nil || addr.Name != "" {
		return types.NewValidationError("email", "is not a valid email address")
	}

	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
