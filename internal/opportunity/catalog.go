// Package opportunity manages the job postings attached to an initiative and
// which optional engagement channels it has open.
package opportunity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"changemakers/internal/store"
	"changemakers/internal/utils"
	"changemakers/pkg/types"

	"github.com/sirupsen/logrus"
)

type JobStore interface {
	Job(ctx context.Context, jobID string) (*types.Job, error)
	ActiveJobsByInitiative(ctx context.Context, initiativeID string) ([]*types.Job, error)
	CreateJobs(ctx context.Context, jobs []*types.Job) error
	SetJobActive(ctx context.Context, initiativeID, jobID string, active bool) error
}

type PreferenceStore interface {
	UpdatePreferences(ctx context.Context, initiativeID string, prefs types.OpportunityPreferences) error
}

type Catalog struct {
	logger      logrus.FieldLogger
	jobs        JobStore
	preferences PreferenceStore
}

func NewCatalog(logger logrus.FieldLogger, jobs JobStore, preferences PreferenceStore) *Catalog {
	return &Catalog{
		logger:      logger,
		jobs:        jobs,
		preferences: preferences,
	}
}

// AddJobs inserts the postings with a title. Rows left blank on the form are
// dropped without error.
func (c *Catalog) AddJobs(ctx context.Context, initiativeID string, drafts []types.JobDraft) ([]*types.Job, error) {
	jobs := make([]*types.Job, 0, len(drafts))
	for _, d := range drafts {
		if utils.Blank(d.Title) {
			continue
		}

		jobs = append(jobs, &types.Job{
			InitiativeID: initiativeID,
			Title:        strings.TrimSpace(d.Title),
			Type:         utils.TrimmedPtr(d.Type),
			Description:  utils.TrimmedPtr(d.Description),
			IsActive:     true,
		})
	}

	if len(jobs) == 0 {
		return jobs, nil
	}

	if err := c.jobs.CreateJobs(ctx, jobs); err != nil {
		c.logger.WithError(err).WithFields(store.ErrorFields(err)).
			WithField("initiative_id", initiativeID).
			Error("failed to insert job postings")
		return nil, fmt.Errorf("could not save job postings: %w", err)
	}

	return jobs, nil
}

// ListJobs returns only the postings still open for applications.
func (c *Catalog) ListJobs(ctx context.Context, initiativeID string) ([]*types.Job, error) {
	jobs, err := c.jobs.ActiveJobsByInitiative(ctx, initiativeID)
	if err != nil {
		c.logger.WithError(err).WithField("initiative_id", initiativeID).Error("failed to list jobs")
		return nil, fmt.Errorf("could not load job postings: %w", err)
	}

	return jobs, nil
}

func (c *Catalog) DeactivateJob(ctx context.Context, initiativeID, jobID string) error {
	err := c.jobs.SetJobActive(ctx, initiativeID, jobID, false)
	if err != nil && !errors.Is(err, types.ErrJobNotFound) {
		c.logger.WithError(err).WithFields(logrus.Fields{"initiative_id": initiativeID, "job_id": jobID}).Error("failed to deactivate job")
		return fmt.Errorf("could not close the job posting: %w", err)
	}
	return err
}

// OpenJob returns the job when it belongs to the initiative and is active.
func (c *Catalog) OpenJob(ctx context.Context, initiativeID, jobID string) (*types.Job, error) {
	job, err := c.jobs.Job(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.InitiativeID != initiativeID || !job.IsActive {
		return nil, types.ErrJobNotFound
	}

	return job, nil
}

// Preferences reads the channel flags from the initiative. Records that never
// set a flag accept that channel.
func Preferences(initiative *types.Initiative) types.OpportunityPreferences {
	return types.OpportunityPreferences{
		AcceptProposals:       utils.PtrBoolOr(initiative.AcceptProposals, true),
		AcceptContentCreators: utils.PtrBoolOr(initiative.AcceptContentCreators, true),
		AcceptAmbassadors:     utils.PtrBoolOr(initiative.AcceptAmbassadors, true),
	}
}

func (c *Catalog) SetPreferences(ctx context.Context, initiativeID string, prefs types.OpportunityPreferences) error {
	if err := c.preferences.UpdatePreferences(ctx, initiativeID, prefs); err != nil {
		if errors.Is(err, types.ErrInitiativeNotFound) {
			return err
		}
		c.logger.WithError(err).WithField("initiative_id", initiativeID).Error("failed to update opportunity preferences")
		return fmt.Errorf("could not update preferences: %w", err)
	}
	return nil
}

// Accepts reports whether the initiative takes applications of kind. Job and
// volunteer applications have no preference flag and are always accepted.
func Accepts(initiative *types.Initiative, kind types.ApplicationKind) bool {
	prefs := Preferences(initiative)

	switch kind {
	case types.ApplicationKindProposal:
		return prefs.AcceptProposals
	case types.ApplicationKindContentCreator:
		return prefs.AcceptContentCreators
	case types.ApplicationKindAmbassador:
		return prefs.AcceptAmbassadors
	default:
		return kind.IsValid()
	}
}
