package initiative

import (
	"context"
	"errors"
	"fmt"

	"changemakers/internal/identity"
	"changemakers/pkg/types"

	"github.com/sirupsen/logrus"
)

type DraftStore interface {
	Draft(ctx context.Context, sessionKey string) (*types.SavedDraft, error)
	SaveDraft(ctx context.Context, draft *types.SavedDraft) error
	DeleteDraft(ctx context.Context, sessionKey string) error
}

// Drafts autosaves an in-progress initiative form per session. Pending image
// uploads are never part of the stored snapshot.
type Drafts struct {
	logger logrus.FieldLogger
	store  DraftStore
}

func NewDrafts(logger logrus.FieldLogger, store DraftStore) *Drafts {
	return &Drafts{logger: logger, store: store}
}

func (d *Drafts) Save(ctx context.Context, sess *identity.Session, draft *types.InitiativeDraft) (*types.SavedDraft, error) {
	if !sess.Valid() {
		return nil, types.ErrSessionInvalid
	}
	if draft == nil {
		return nil, types.NewValidationError("draft", "is required")
	}

	snapshot := *draft
	snapshot.PendingImages = nil

	saved := &types.SavedDraft{SessionKey: sess.Key(), Snapshot: snapshot}
	if err := d.store.SaveDraft(ctx, saved); err != nil {
		d.logger.WithError(err).Error("failed to autosave draft")
		return nil, fmt.Errorf("could not save your draft: %w", err)
	}

	return saved, nil
}

// Load returns nil, nil when nothing has been saved for the session.
func (d *Drafts) Load(ctx context.Context, sess *identity.Session) (*types.SavedDraft, error) {
	if !sess.Valid() {
		return nil, types.ErrSessionInvalid
	}

	saved, err := d.store.Draft(ctx, sess.Key())
	if err != nil {
		if errors.Is(err, types.ErrDraftNotFound) {
			return nil, nil
		}
		d.logger.WithError(err).Error("failed to load draft")
		return nil, fmt.Errorf("could not load your draft: %w", err)
	}

	return saved, nil
}

func (d *Drafts) Clear(ctx context.Context, sess *identity.Session) error {
	if err := d.store.DeleteDraft(ctx, sess.Key()); err != nil {
		d.logger.WithError(err).Error("failed to clear draft")
		return fmt.Errorf("could not clear your draft: %w", err)
	}
	return nil
}
