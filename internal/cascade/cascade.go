// Package cascade removes an initiative together with everything that points
// at it. There is no transaction across the steps; each one runs on its own
// and its outcome is recorded on the result.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"changemakers/internal/storage"
	"changemakers/internal/store"
	"changemakers/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	StepMilestones            = "delete_milestones"
	StepJobs                  = "delete_jobs"
	StepVolunteerApplications = "delete_volunteer_applications"
	StepJobApplications       = "delete_job_applications"
	StepProposals             = "tombstone_proposals"
	StepAmbassadors           = "tombstone_ambassador_applications"
	StepContentCreators       = "tombstone_content_creator_applications"
	StepBlogPosts             = "unlink_blog_posts"
	StepImages                = "delete_images"
	StepInitiative            = "delete_initiative"
)

type InitiativeStore interface {
	Initiative(ctx context.Context, initiativeID string) (*types.Initiative, error)
	DeleteInitiative(ctx context.Context, initiativeID string) (int64, error)
}

type MilestoneStore interface {
	DeleteMilestonesByInitiative(ctx context.Context, initiativeID string) (int64, error)
}

type JobStore interface {
	DeleteJobsByInitiative(ctx context.Context, initiativeID string) (int64, error)
}

type ApplicationStore interface {
	DeleteApplicationsByInitiative(ctx context.Context, kind types.ApplicationKind, initiativeID string) (int64, error)
	TombstoneApplicationsByInitiative(ctx context.Context, kind types.ApplicationKind, initiativeID string, at time.Time) (int64, error)
}

type BlogStore interface {
	UnlinkInitiative(ctx context.Context, initiativeID string) (int64, error)
}

type Orchestrator struct {
	logger       logrus.FieldLogger
	initiatives  InitiativeStore
	milestones   MilestoneStore
	jobs         JobStore
	applications ApplicationStore
	blog         BlogStore
	blobs        storage.BlobStore

	now func() time.Time
}

type Stores struct {
	Initiatives  InitiativeStore
	Milestones   MilestoneStore
	Jobs         JobStore
	Applications ApplicationStore
	Blog         BlogStore
}

// NewOrchestrator builds an orchestrator. blobs may be nil, in which case
// image removal is skipped.
func NewOrchestrator(logger logrus.FieldLogger, stores Stores, blobs storage.BlobStore) *Orchestrator {
	return &Orchestrator{
		logger:       logger,
		initiatives:  stores.Initiatives,
		milestones:   stores.Milestones,
		jobs:         stores.Jobs,
		applications: stores.Applications,
		blog:         stores.Blog,
		blobs:        blobs,
		now:          time.Now,
	}
}

// DeleteInitiative runs every step in order. A failed dependent step is
// recorded and the sequence continues. Only a failure of the final row
// delete is returned as an error, alongside the result.
func (o *Orchestrator) DeleteInitiative(ctx context.Context, initiativeID string) (*types.CascadeResult, error) {
	entry := o.logger.WithField("initiative_id", initiativeID)
	result := &types.CascadeResult{InitiativeID: initiativeID}

	// Image URLs live on the row, so read it before anything is removed.
	var imageURLs []string
	initiative, lookupErr := o.initiatives.Initiative(ctx, initiativeID)
	if lookupErr == nil {
		imageURLs = initiative.ImageURLs
	}

	at := o.now()

	run := func(name string, fn func() (int64, error)) {
		step := &types.CascadeStep{Name: name}
		result.Steps = append(result.Steps, step)

		affected, err := fn()
		step.Affected = affected
		if err != nil {
			step.Outcome = types.StepFailed
			step.Error = err.Error()
			entry.WithError(err).WithFields(store.ErrorFields(err)).WithField("step", name).Error("cascade step failed, continuing")
			return
		}
		step.Outcome = types.StepSucceeded
	}

	skip := func(name, reason string) {
		result.Steps = append(result.Steps, &types.CascadeStep{Name: name, Outcome: types.StepSkipped, Error: reason})
	}

	run(StepMilestones, func() (int64, error) {
		return o.milestones.DeleteMilestonesByInitiative(ctx, initiativeID)
	})
	run(StepJobs, func() (int64, error) {
		return o.jobs.DeleteJobsByInitiative(ctx, initiativeID)
	})
	run(StepVolunteerApplications, func() (int64, error) {
		return o.applications.DeleteApplicationsByInitiative(ctx, types.ApplicationKindVolunteer, initiativeID)
	})
	run(StepJobApplications, func() (int64, error) {
		return o.applications.DeleteApplicationsByInitiative(ctx, types.ApplicationKindJob, initiativeID)
	})
	run(StepProposals, func() (int64, error) {
		return o.applications.TombstoneApplicationsByInitiative(ctx, types.ApplicationKindProposal, initiativeID, at)
	})
	run(StepAmbassadors, func() (int64, error) {
		return o.applications.TombstoneApplicationsByInitiative(ctx, types.ApplicationKindAmbassador, initiativeID, at)
	})
	run(StepContentCreators, func() (int64, error) {
		return o.applications.TombstoneApplicationsByInitiative(ctx, types.ApplicationKindContentCreator, initiativeID, at)
	})
	run(StepBlogPosts, func() (int64, error) {
		return o.blog.UnlinkInitiative(ctx, initiativeID)
	})

	switch {
	case o.blobs == nil:
		skip(StepImages, "no blob store configured")
	case lookupErr != nil && !errors.Is(lookupErr, types.ErrInitiativeNotFound):
		run(StepImages, func() (int64, error) {
			return 0, fmt.Errorf("could not read image list: %w", lookupErr)
		})
	case len(imageURLs) == 0:
		skip(StepImages, "initiative has no images")
	default:
		run(StepImages, func() (int64, error) {
			return o.deleteImages(ctx, imageURLs)
		})
	}

	var finalErr error
	run(StepInitiative, func() (int64, error) {
		affected, err := o.initiatives.DeleteInitiative(ctx, initiativeID)
		finalErr = err
		return affected, err
	})

	result.Deleted = finalErr == nil && result.Step(StepInitiative).Affected > 0

	entry.WithFields(logrus.Fields{
		"deleted":      result.Deleted,
		"failed_steps": len(result.Failed()),
	}).Info("initiative cascade finished")

	if finalErr != nil {
		return result, fmt.Errorf("could not delete the initiative: %w", finalErr)
	}

	return result, nil
}

// deleteImages removes each stored image. URLs that did not come from this
// blob store are left alone.
func (o *Orchestrator) deleteImages(ctx context.Context, urls []string) (int64, error) {
	var (
		deleted int64
		errs    []error
	)

	for _, url := range urls {
		key, ok := storage.KeyFromURL(o.blobs, url)
		if !ok {
			continue
		}

		if err := o.blobs.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		deleted++
	}

	return deleted, errors.Join(errs...)
}
