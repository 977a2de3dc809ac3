package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"changemakers/pkg/types"

	"github.com/h2non/filetype"
)

const (
	maxUploadMemory = 32 << 20
	maxImageBytes   = 10 << 20
)

func (s *Service) handleCreateInitiative(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.sessionFromContext(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	draft, err := s.decodeInitiativeDraft(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.publisher.Publish(ctx, sess, draft)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, result)
}

// decodeInitiativeDraft reads either a JSON draft or a multipart form with
// the draft JSON in the "initiative" field and files under "images".
func (s *Service) decodeInitiativeDraft(r *http.Request) (*types.InitiativeDraft, error) {
	draft := new(types.InitiativeDraft)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := s.decodeJSON(r, draft); err != nil {
			return nil, err
		}
		return draft, nil
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	if err := json.Unmarshal([]byte(r.FormValue("initiative")), draft); err != nil {
		return nil, fmt.Errorf("%w: initiative field: %v", errBadRequest, err)
	}

	for _, header := range r.MultipartForm.File["images"] {
		upload, err := readImage(header)
		if err != nil {
			return nil, err
		}
		draft.PendingImages = append(draft.PendingImages, upload)
	}

	return draft, nil
}

func readImage(header *multipart.FileHeader) (types.ImageUpload, error) {
	if header.Size > maxImageBytes {
		return types.ImageUpload{}, types.NewValidationError("images", fmt.Sprintf("%s is larger than 10MB", header.Filename))
	}

	file, err := header.Open()
	if err != nil {
		return types.ImageUpload{}, fmt.Errorf("failed to open upload %s: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return types.ImageUpload{}, fmt.Errorf("failed to read upload %s: %w", header.Filename, err)
	}

	// The declared Content-Type is ignored; only the magic bytes count.
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown || !filetype.IsImage(data) {
		return types.ImageUpload{}, types.NewValidationError("images", fmt.Sprintf("%s is not an image", header.Filename))
	}

	return types.ImageUpload{FileName: header.Filename, ContentType: kind.MIME.Value, Data: data}, nil
}

func (s *Service) handleUpdateInitiative(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := s.ownedInitiative(ctx, w, r.PathValue("id"))
	if !ok {
		return
	}

	edited := new(types.Initiative)
	if err := s.decodeJSON(r, edited); err != nil {
		s.writeError(w, err)
		return
	}

	carryOver(edited, existing)

	updated, err := s.initiatives.Update(ctx, edited)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, updated)
}

// carryOver copies ownership fields from the stored initiative and keeps any
// image list or opportunity flag the edit left out.
func carryOver(edited, existing *types.Initiative) {
	edited.ID = existing.ID
	edited.ChangemakerID = existing.ChangemakerID
	edited.CreatedAt = existing.CreatedAt

	if edited.ImageURLs == nil {
		edited.ImageURLs = existing.ImageURLs
	}
	if edited.AcceptProposals == nil {
		edited.AcceptProposals = existing.AcceptProposals
	}
	if edited.AcceptContentCreators == nil {
		edited.AcceptContentCreators = existing.AcceptContentCreators
	}
	if edited.AcceptAmbassadors == nil {
		edited.AcceptAmbassadors = existing.AcceptAmbassadors
	}
}

func (s *Service) handleDeleteInitiative(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := s.ownedInitiative(ctx, w, r.PathValue("id"))
	if !ok {
		return
	}

	result, err := s.cascade.DeleteInitiative(ctx, existing.ID)
	if err != nil {
		s.logger.WithError(err).WithField("initiative_id", existing.ID).Error("initiative delete failed")
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  "could not delete the initiative",
			"result": result,
		})
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Service) handleAddJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := s.ownedInitiative(ctx, w, r.PathValue("id"))
	if !ok {
		return
	}

	var drafts []types.JobDraft
	if err := s.decodeJSON(r, &drafts); err != nil {
		s.writeError(w, err)
		return
	}

	jobs, err := s.catalog.AddJobs(ctx, existing.ID, drafts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, jobs)
}

func (s *Service) handleDeactivateJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := s.ownedInitiative(ctx, w, r.PathValue("id"))
	if !ok {
		return
	}

	if err := s.catalog.DeactivateJob(ctx, existing.ID, r.PathValue("jobID")); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleSetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := s.ownedInitiative(ctx, w, r.PathValue("id"))
	if !ok {
		return
	}

	var prefs types.OpportunityPreferences
	if err := s.decodeBody(r, &prefs); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.catalog.SetPreferences(ctx, existing.ID, prefs); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, prefs)
}

func (s *Service) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.sessionFromContext(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	saved, err := s.drafts.Load(ctx, sess)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if saved == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Service) handlePutDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.sessionFromContext(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	draft := new(types.InitiativeDraft)
	if err := s.decodeJSON(r, draft); err != nil {
		s.writeError(w, err)
		return
	}

	saved, err := s.drafts.Save(ctx, sess, draft)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Service) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.sessionFromContext(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.drafts.Clear(ctx, sess); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownedInitiative loads the initiative and checks the caller's changemaker
// owns it. On failure the response has already been written.
func (s *Service) ownedInitiative(ctx context.Context, w http.ResponseWriter, initiativeID string) (*types.Initiative, bool) {
	sess, err := s.sessionFromContext(ctx)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}

	changemakerID, err := s.resolver.ResolveChangemaker(ctx, sess)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}

	found, err := s.initiatives.GetByID(ctx, initiativeID)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	if found == nil {
		s.writeError(w, types.ErrInitiativeNotFound)
		return nil, false
	}

	if found.ChangemakerID != changemakerID {
		s.writeError(w, errForbidden)
		return nil, false
	}

	return found, true
}
