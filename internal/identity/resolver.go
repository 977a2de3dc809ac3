package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"changemakers/internal/utils"
	"changemakers/pkg/types"

	"github.com/sirupsen/logrus"
)

type ChangemakerStore interface {
	ChangemakerByAccount(ctx context.Context, accountID string) (*types.Changemaker, error)
	CreateChangemaker(ctx context.Context, changemaker *types.Changemaker) error
}

// NameSource picks one candidate display name out of a profile.
type NameSource func(p *types.Profile) string

// DefaultNameSources is the priority order used to name a new changemaker.
var DefaultNameSources = []NameSource{
	func(p *types.Profile) string { return p.OrganizationName },
	func(p *types.Profile) string { return p.GovernmentEntityName },
	func(p *types.Profile) string { return p.PoliticalFigureName },
	func(p *types.Profile) string { return p.ChangemakerName },
	func(p *types.Profile) string { return p.Email },
}

// DisplayName returns the first non-blank result of sources.
func DisplayName(p *types.Profile, sources []NameSource) string {
	for _, source := range sources {
		if name := strings.TrimSpace(source(p)); name != "" {
			return name
		}
	}
	return ""
}

type Resolver struct {
	logger  logrus.FieldLogger
	store   ChangemakerStore
	sources []NameSource
}

func NewResolver(logger logrus.FieldLogger, store ChangemakerStore) *Resolver {
	return &Resolver{
		logger:  logger,
		store:   store,
		sources: DefaultNameSources,
	}
}

// ResolveChangemaker finds the account's changemaker, creating it on first use.
// Two first-time calls can race; the loser's insert conflicts on the account
// index and it reads the winner's row instead.
func (r *Resolver) ResolveChangemaker(ctx context.Context, sess *Session) (string, error) {
	accountID, err := sess.AccountID()
	if err != nil {
		return "", err
	}

	existing, err := r.store.ChangemakerByAccount(ctx, accountID)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, types.ErrChangemakerNotFound) {
		return "", fmt.Errorf("failed to look up changemaker: %w", err)
	}

	profile, err := sess.Profile(ctx)
	if err != nil {
		return "", err
	}

	name := DisplayName(profile, r.sources)
	if name == "" {
		return "", types.NewValidationError("display_name", "add an organization name or email to your profile before publishing")
	}

	changemaker := &types.Changemaker{
		AccountID:    accountID,
		DisplayName:  name,
		Organization: utils.TrimmedPtr(profile.OrganizationName),
	}

	err = r.store.CreateChangemaker(ctx, changemaker)
	if err == nil {
		r.logger.WithFields(logrus.Fields{
			"account_id":     accountID,
			"changemaker_id": changemaker.ID,
		}).Info("created changemaker")

		if _, err := sess.Refresh(ctx); err != nil {
			r.logger.WithError(err).Warn("failed to refresh session after creating changemaker")
		}

		return changemaker.ID, nil
	}

	if !errors.Is(err, types.ErrDuplicate) {
		return "", fmt.Errorf("failed to create changemaker: %w", err)
	}

	r.logger.WithField("account_id", accountID).Debug("changemaker created concurrently, re-reading")

	existing, err = r.store.ChangemakerByAccount(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("failed to re-read changemaker after conflict: %w", err)
	}

	return existing.ID, nil
}
