package server

import (
	"context"
	"net/http"
	"strings"

	"changemakers/pkg/types"
)

// handleSubmitApplication accepts any of the five application kinds as JSON
// or as a form post.
func (s *Service) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	initiativeID := r.PathValue("id")
	kind := types.ApplicationKind(r.PathValue("kind"))

	var (
		email  string
		submit func(context.Context) error
		row    any
	)

	switch kind {
	case types.ApplicationKindJob:
		app := new(types.JobApplication)
		row, submit = app, func(ctx context.Context) error { return s.intake.SubmitJob(ctx, app) }
	case types.ApplicationKindAmbassador:
		app := new(types.AmbassadorApplication)
		row, submit = app, func(ctx context.Context) error { return s.intake.SubmitAmbassador(ctx, app) }
	case types.ApplicationKindProposal:
		app := new(types.Proposal)
		row, submit = app, func(ctx context.Context) error { return s.intake.SubmitProposal(ctx, app) }
	case types.ApplicationKindContentCreator:
		app := new(types.ContentCreatorApplication)
		row, submit = app, func(ctx context.Context) error { return s.intake.SubmitContentCreator(ctx, app) }
	case types.ApplicationKindVolunteer:
		app := new(types.VolunteerApplication)
		row, submit = app, func(ctx context.Context) error { return s.intake.SubmitVolunteer(ctx, app) }
	default:
		s.writeError(w, types.NewValidationError("kind", "unknown application kind"))
		return
	}

	if err := s.decodeBody(r, row); err != nil {
		s.writeError(w, err)
		return
	}

	switch app := row.(type) {
	case *types.JobApplication:
		app.InitiativeID, email = initiativeID, app.Email
	case *types.AmbassadorApplication:
		app.InitiativeID, email = initiativeID, app.Email
	case *types.Proposal:
		app.InitiativeID, email = initiativeID, app.Email
	case *types.ContentCreatorApplication:
		app.InitiativeID, email = initiativeID, app.Email
	case *types.VolunteerApplication:
		app.InitiativeID, email = initiativeID, app.Email
	}

	release, err := s.guard.Acquire(strings.Join([]string{"apply", initiativeID, string(kind), strings.ToLower(strings.TrimSpace(email))}, ":"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer release()

	if err := submit(ctx); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, row)
}
