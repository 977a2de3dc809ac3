package intake

import (
	"context"
	"errors"
	"fmt"

	"changemakers/internal/utils"
	"changemakers/pkg/types"

	"github.com/sirupsen/logrus"
)

var reviewTransitions = map[types.ApplicationStatus][]types.ApplicationStatus{
	types.ApplicationStatusPending:  {types.ApplicationStatusReviewed, types.ApplicationStatusAccepted, types.ApplicationStatusRejected},
	types.ApplicationStatusReviewed: {types.ApplicationStatusAccepted, types.ApplicationStatusRejected},
	types.ApplicationStatusAccepted: {},
	types.ApplicationStatusRejected: {},
}

// Volunteers are approved rather than accepted, then move through an
// engagement lifecycle of their own.
var volunteerTransitions = map[types.ApplicationStatus][]types.ApplicationStatus{
	types.ApplicationStatusPending:   {types.ApplicationStatusReviewed, types.ApplicationStatusApproved, types.ApplicationStatusRejected, types.ApplicationStatusWithdrawn},
	types.ApplicationStatusReviewed:  {types.ApplicationStatusApproved, types.ApplicationStatusRejected, types.ApplicationStatusWithdrawn},
	types.ApplicationStatusApproved:  {types.ApplicationStatusActive},
	types.ApplicationStatusActive:    {types.ApplicationStatusCompleted},
	types.ApplicationStatusRejected:  {},
	types.ApplicationStatusWithdrawn: {},
	types.ApplicationStatusCompleted: {},
}

// CanTransition reports whether an application of kind may move from one
// status to another in a single step.
func CanTransition(kind types.ApplicationKind, from, to types.ApplicationStatus) bool {
	transitions := reviewTransitions
	if kind == types.ApplicationKindVolunteer {
		transitions = volunteerTransitions
	}

	allowed, ok := transitions[from]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}

// Transition moves one application to target, recording who did it and when.
func (i *Intake) Transition(ctx context.Context, kind types.ApplicationKind, applicationID string, target types.ApplicationStatus, reviewerID string) (*types.ApplicationRecord, error) {
	if !kind.IsValid() {
		return nil, types.NewValidationError("kind", "unknown application kind")
	}
	if utils.Blank(reviewerID) {
		return nil, types.NewValidationError("reviewer", "is required")
	}

	entry := i.logger.WithFields(logrus.Fields{
		"kind":           kind,
		"application_id": applicationID,
		"target":         target,
	})

	current, err := i.applications.Application(ctx, kind, applicationID)
	if err != nil {
		if errors.Is(err, types.ErrApplicationNotFound) {
			return nil, err
		}
		entry.WithError(err).Error("failed to load application for review")
		return nil, fmt.Errorf("could not load the application: %w", err)
	}

	if !CanTransition(kind, current.Status, target) {
		return nil, fmt.Errorf("%w: %s application cannot move from %s to %s", types.ErrInvalidTransition, kind, current.Status, target)
	}

	at := i.now()
	err = i.applications.UpdateApplicationStatus(ctx, kind, applicationID, current.Status, target, reviewerID, at)
	if err != nil {
		if errors.Is(err, types.ErrInvalidTransition) {
			return nil, err
		}
		entry.WithError(err).Error("failed to update application status")
		return nil, fmt.Errorf("could not update the application: %w", err)
	}

	entry.WithField("from", current.Status).Info("application status changed")

	current.Status = target
	current.ReviewedBy = utils.StringPtr(reviewerID)
	current.ReviewedAt = utils.TimePtr(at)
	current.UpdatedAt = at

	return current, nil
}

func (i *Intake) Review(ctx context.Context, kind types.ApplicationKind, applicationID, reviewerID string) (*types.ApplicationRecord, error) {
	return i.Transition(ctx, kind, applicationID, types.ApplicationStatusReviewed, reviewerID)
}

// Approve accepts the application. For volunteers this is the approved status.
func (i *Intake) Approve(ctx context.Context, kind types.ApplicationKind, applicationID, reviewerID string) (*types.ApplicationRecord, error) {
	target := types.ApplicationStatusAccepted
	if kind == types.ApplicationKindVolunteer {
		target = types.ApplicationStatusApproved
	}
	return i.Transition(ctx, kind, applicationID, target, reviewerID)
}

func (i *Intake) Reject(ctx context.Context, kind types.ApplicationKind, applicationID, reviewerID string) (*types.ApplicationRecord, error) {
	return i.Transition(ctx, kind, applicationID, types.ApplicationStatusRejected, reviewerID)
}

func (i *Intake) Activate(ctx context.Context, kind types.ApplicationKind, applicationID, reviewerID string) (*types.ApplicationRecord, error) {
	return i.Transition(ctx, kind, applicationID, types.ApplicationStatusActive, reviewerID)
}

func (i *Intake) Complete(ctx context.Context, kind types.ApplicationKind, applicationID, reviewerID string) (*types.ApplicationRecord, error) {
	return i.Transition(ctx, kind, applicationID, types.ApplicationStatusCompleted, reviewerID)
}

func (i *Intake) Withdraw(ctx context.Context, kind types.ApplicationKind, applicationID, reviewerID string) (*types.ApplicationRecord, error) {
	return i.Transition(ctx, kind, applicationID, types.ApplicationStatusWithdrawn, reviewerID)
}

// Action maps a review verb to its method, for callers dispatching by name.
func (i *Intake) Action(verb string) (func(ctx context.Context, kind types.ApplicationKind, applicationID, reviewerID string) (*types.ApplicationRecord, error), bool) {
	actions := map[string]func(context.Context, types.ApplicationKind, string, string) (*types.ApplicationRecord, error){
		"review":   i.Review,
		"approve":  i.Approve,
		"reject":   i.Reject,
		"activate": i.Activate,
		"complete": i.Complete,
		"withdraw": i.Withdraw,
	}

	action, ok := actions[verb]
	return action, ok
}

func (i *Intake) List(ctx context.Context, kind types.ApplicationKind, initiativeID string) ([]*types.ApplicationRecord, error) {
	if !kind.IsValid() {
		return nil, types.NewValidationError("kind", "unknown application kind")
	}

	records, err := i.applications.ApplicationsByInitiative(ctx, kind, initiativeID)
	if err != nil {
		i.logger.WithError(err).WithFields(logrus.Fields{"kind": kind, "initiative_id": initiativeID}).Error("failed to list applications")
		return nil, fmt.Errorf("could not load applications: %w", err)
	}

	return records, nil
}

func (i *Intake) Application(ctx context.Context, kind types.ApplicationKind, applicationID string) (*types.ApplicationRecord, error) {
	if !kind.IsValid() {
		return nil, types.NewValidationError("kind", "unknown application kind")
	}

	record, err := i.applications.Application(ctx, kind, applicationID)
	if err != nil {
		if errors.Is(err, types.ErrApplicationNotFound) {
			return nil, err
		}
		i.logger.WithError(err).WithFields(logrus.Fields{"kind": kind, "application_id": applicationID}).Error("failed to load application")
		return nil, fmt.Errorf("could not load the application: %w", err)
	}

	return record, nil
}
