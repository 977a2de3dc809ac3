package server

import (
	"net/http"

	"changemakers/internal/initiative"
	"changemakers/pkg/types"
)

type meResponse struct {
	ChangemakerID string         `json:"changemakerId"`
	Email         string         `json:"email"`
	Profile       *types.Profile `json:"profile"`
}

func (s *Service) handleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.sessionFromContext(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	changemakerID, err := s.resolver.ResolveChangemaker(ctx, sess)
	if err != nil {
		s.writeError(w, err)
		return
	}

	profile, err := sess.Profile(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, meResponse{
		ChangemakerID: changemakerID,
		Email:         sess.Email(),
		Profile:       profile,
	})
}

func (s *Service) handleMyInitiatives(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.sessionFromContext(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	changemakerID, err := s.resolver.ResolveChangemaker(ctx, sess)
	if err != nil {
		s.writeError(w, err)
		return
	}

	initiatives, err := s.initiatives.ListForChangemaker(ctx, changemakerID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, initiatives)
}

// handleDashboard lists the caller's initiatives with progress, filtered by
// either a lifecycle status or a display status.
func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.sessionFromContext(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	changemakerID, err := s.resolver.ResolveChangemaker(ctx, sess)
	if err != nil {
		s.writeError(w, err)
		return
	}

	initiatives, err := s.initiatives.ListForChangemaker(ctx, changemakerID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, initiative.FilterSummaries(initiatives, r.URL.Query().Get("status")))
}

func (s *Service) handleListApplications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := s.ownedInitiative(ctx, w, r.PathValue("id"))
	if !ok {
		return
	}

	records, err := s.intake.List(ctx, types.ApplicationKind(r.PathValue("kind")), existing.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, records)
}

// handleReviewApplication applies a review verb (review, approve, reject,
// activate, complete, withdraw) on behalf of the initiative's changemaker.
func (s *Service) handleReviewApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kind := types.ApplicationKind(r.PathValue("kind"))
	applicationID := r.PathValue("applicationID")

	action, ok := s.intake.Action(r.PathValue("action"))
	if !ok {
		s.writeError(w, types.NewValidationError("action", "unknown review action"))
		return
	}

	record, err := s.intake.Application(ctx, kind, applicationID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	existing, ok := s.ownedInitiative(ctx, w, record.InitiativeID)
	if !ok {
		return
	}

	updated, err := action(ctx, kind, applicationID, existing.ChangemakerID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, updated)
}
