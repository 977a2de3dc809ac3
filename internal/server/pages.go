package server

import (
	"net/http"
	"strings"

	"changemakers/internal/geo"
	"changemakers/internal/initiative"
	"changemakers/internal/opportunity"
	"changemakers/pkg/types"
)

type initiativeDetail struct {
	types.InitiativeSummary
	Preferences types.OpportunityPreferences `json:"preferences"`
	Jobs        []*types.Job                 `json:"jobs"`
}

func (s *Service) handleListInitiatives(w http.ResponseWriter, r *http.Request) {
	initiatives, err := s.initiatives.ListPublic(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, initiative.FilterSummaries(initiatives, r.URL.Query().Get("status")))
}

// handleGetInitiative serves publicly visible initiatives only.
func (s *Service) handleGetInitiative(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	initiativeID := r.PathValue("id")

	found, err := s.initiatives.GetByID(ctx, initiativeID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if found == nil || !found.Status.IsPublic() {
		s.writeError(w, types.ErrInitiativeNotFound)
		return
	}

	jobs, err := s.catalog.ListJobs(ctx, initiativeID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, initiativeDetail{
		InitiativeSummary: initiative.Summarize(found),
		Preferences:       opportunity.Preferences(found),
		Jobs:              jobs,
	})
}

// handleListJobs lists open postings of publicly visible initiatives only.
func (s *Service) handleListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	initiativeID := r.PathValue("id")

	found, err := s.initiatives.GetByID(ctx, initiativeID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if found == nil || !found.Status.IsPublic() {
		s.writeError(w, types.ErrInitiativeNotFound)
		return
	}

	jobs, err := s.catalog.ListJobs(ctx, initiativeID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, jobs)
}

// handleGetPlaces resolves the location search box. Text that already reads
// as a coordinate is answered directly; anything else goes to the geocoder.
func (s *Service) handleGetPlaces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.writeJSON(w, http.StatusOK, []types.Place{})
		return
	}

	if coordinate, ok := geo.Parse(query); ok {
		place := types.Place{Coordinate: *coordinate}
		if s.geocoder != nil {
			address, err := s.geocoder.ReverseGeocode(ctx, coordinate.Lat, coordinate.Lng)
			if err != nil {
				s.logger.WithError(err).Debug("reverse geocode failed")
			}
			place.AddressText = address
		}
		s.writeJSON(w, http.StatusOK, []types.Place{place})
		return
	}

	if s.geocoder == nil {
		s.writeJSON(w, http.StatusOK, []types.Place{})
		return
	}

	places, err := s.geocoder.SearchPlaces(ctx, query)
	if err != nil {
		s.logger.WithError(err).Warn("place search failed")
		s.writeJSON(w, http.StatusOK, []types.Place{})
		return
	}

	s.writeJSON(w, http.StatusOK, places)
}
