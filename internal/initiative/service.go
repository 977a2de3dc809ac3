// Package initiative creates, reads, updates and removes initiatives together
// with their milestone sets.
package initiative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"changemakers/internal/geo"
	"changemakers/internal/identity"
	"changemakers/internal/storage"
	"changemakers/internal/store"
	"changemakers/internal/utils"
	"changemakers/pkg/types"

	"github.com/sirupsen/logrus"
)

const DefaultPublicListLimit = 50

type InitiativeStore interface {
	Initiative(ctx context.Context, initiativeID string) (*types.Initiative, error)
	InitiativesByStatus(ctx context.Context, statuses []types.InitiativeStatus, limit uint64) ([]*types.Initiative, error)
	InitiativesByChangemaker(ctx context.Context, changemakerID string) ([]*types.Initiative, error)
	CreateInitiative(ctx context.Context, initiative *types.Initiative) error
	UpdateInitiative(ctx context.Context, initiative *types.Initiative) error
	DeleteInitiative(ctx context.Context, initiativeID string) (int64, error)
}

type MilestoneStore interface {
	MilestonesByInitiative(ctx context.Context, initiativeID string) ([]*types.Milestone, error)
	CreateMilestones(ctx context.Context, milestones []*types.Milestone) error
	DeleteMilestonesByInitiative(ctx context.Context, initiativeID string) (int64, error)
}

type ChangemakerResolver interface {
	ResolveChangemaker(ctx context.Context, sess *identity.Session) (string, error)
}

// JobCatalog receives the job postings submitted alongside a new initiative.
type JobCatalog interface {
	AddJobs(ctx context.Context, initiativeID string, jobs []types.JobDraft) ([]*types.Job, error)
}

type Service struct {
	logger      logrus.FieldLogger
	initiatives InitiativeStore
	milestones  MilestoneStore
	resolver    ChangemakerResolver

	jobs     JobCatalog
	blobs    storage.BlobStore
	geocoder geo.Geocoder

	publicListLimit uint64
	now             func() time.Time
}

type Option func(*Service)

func WithJobCatalog(jobs JobCatalog) Option {
	return func(s *Service) { s.jobs = jobs }
}

func WithBlobStore(blobs storage.BlobStore) Option {
	return func(s *Service) { s.blobs = blobs }
}

func WithGeocoder(geocoder geo.Geocoder) Option {
	return func(s *Service) { s.geocoder = geocoder }
}

func WithPublicListLimit(limit uint64) Option {
	return func(s *Service) {
		if limit > 0 {
			s.publicListLimit = limit
		}
	}
}

func NewService(logger logrus.FieldLogger, initiatives InitiativeStore, milestones MilestoneStore, resolver ChangemakerResolver, opts ...Option) *Service {
	s := &Service{
		logger:          logger,
		initiatives:     initiatives,
		milestones:      milestones,
		resolver:        resolver,
		publicListLimit: DefaultPublicListLimit,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create validates the draft, stores the initiative and then its milestones.
// The milestone batch is a separate write; if it fails the initiative stays
// and the failure is reported on the result rather than rolled back.
func (s *Service) Create(ctx context.Context, sess *identity.Session, draft *types.InitiativeDraft) (*types.CreateResult, error) {
	if err := ValidateDraft(draft); err != nil {
		return nil, err
	}

	changemakerID, err := s.resolver.ResolveChangemaker(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("could not resolve the publishing identity: %w", err)
	}

	initiative := fromDraft(draft)
	initiative.ChangemakerID = changemakerID

	entry := s.logger.WithField("changemaker_id", changemakerID)
	result := &types.CreateResult{}

	s.autofillArea(ctx, initiative)

	initiative.ImageURLs, result.FailedImages = s.uploadImages(ctx, entry, changemakerID, draft.PendingImages)

	if err := s.initiatives.CreateInitiative(ctx, initiative); err != nil {
		entry.WithError(err).WithFields(store.ErrorFields(err)).Error("failed to insert initiative")
		s.discardImages(ctx, entry, initiative.ImageURLs)
		return nil, fmt.Errorf("could not save the initiative: %w", err)
	}

	entry = entry.WithField("initiative_id", initiative.ID)

	milestones := milestonesFromDrafts(initiative.ID, draft.Milestones)
	if err := s.milestones.CreateMilestones(ctx, milestones); err != nil {
		entry.WithError(err).WithFields(store.ErrorFields(err)).
			WithField("milestone_count", len(milestones)).
			Error("initiative stored but milestones failed to insert")
		result.MilestoneError = err.Error()
	}

	if len(draft.Jobs) > 0 && s.jobs != nil {
		if _, err := s.jobs.AddJobs(ctx, initiative.ID, draft.Jobs); err != nil {
			entry.WithError(err).Error("initiative stored but job postings failed to insert")
			result.JobError = err.Error()
		}
	}

	stored, err := s.GetByID(ctx, initiative.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("initiative %s vanished after creation: %w", initiative.ID, types.ErrInitiativeNotFound)
	}
	result.Initiative = stored

	entry.WithFields(logrus.Fields{
		"milestones":    len(stored.Milestones),
		"images":        len(stored.ImageURLs),
		"failed_images": len(result.FailedImages),
	}).Info("initiative created")

	return result, nil
}

// Update overwrites the initiative's scalar fields and then replaces its whole
// milestone set with initiative.Milestones.
func (s *Service) Update(ctx context.Context, initiative *types.Initiative) (*types.Initiative, error) {
	if err := ValidateInitiative(initiative); err != nil {
		return nil, err
	}

	entry := s.logger.WithField("initiative_id", initiative.ID)

	if err := s.initiatives.UpdateInitiative(ctx, initiative); err != nil {
		if errors.Is(err, types.ErrInitiativeNotFound) {
			return nil, err
		}
		entry.WithError(err).WithFields(store.ErrorFields(err)).Error("failed to update initiative")
		return nil, fmt.Errorf("could not update the initiative: %w", err)
	}

	if _, err := s.milestones.DeleteMilestonesByInitiative(ctx, initiative.ID); err != nil {
		entry.WithError(err).WithFields(store.ErrorFields(err)).Error("failed to clear milestones for replacement")
		return nil, fmt.Errorf("could not replace milestones: %w", err)
	}

	replacement := make([]*types.Milestone, 0, len(initiative.Milestones))
	for _, m := range initiative.Milestones {
		replacement = append(replacement, &types.Milestone{
			InitiativeID: initiative.ID,
			Title:        strings.TrimSpace(m.Title),
			TargetDate:   strings.TrimSpace(m.TargetDate),
			Status:       milestoneStatusOrDefault(m.Status),
			Description:  trimmedDescription(m.Description),
		})
	}

	if err := s.milestones.CreateMilestones(ctx, replacement); err != nil {
		entry.WithError(err).WithFields(store.ErrorFields(err)).Error("milestones cleared but replacement failed to insert")
		return nil, fmt.Errorf("could not replace milestones: %w", err)
	}

	stored, err := s.GetByID(ctx, initiative.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, types.ErrInitiativeNotFound
	}

	return stored, nil
}

// GetByID returns nil, nil when the initiative does not exist.
func (s *Service) GetByID(ctx context.Context, initiativeID string) (*types.Initiative, error) {
	initiative, err := s.initiatives.Initiative(ctx, initiativeID)
	if err != nil {
		if errors.Is(err, types.ErrInitiativeNotFound) {
			return nil, nil
		}
		s.logger.WithError(err).WithFields(store.ErrorFields(err)).WithField("initiative_id", initiativeID).Error("failed to fetch initiative")
		return nil, fmt.Errorf("could not load the initiative: %w", err)
	}

	if err := s.attachMilestones(ctx, initiative); err != nil {
		return nil, err
	}

	return initiative, nil
}

// ListPublic returns published, active and completed initiatives, newest first.
func (s *Service) ListPublic(ctx context.Context) ([]*types.Initiative, error) {
	initiatives, err := s.initiatives.InitiativesByStatus(ctx, types.PublicInitiativeStatuses, s.publicListLimit)
	if err != nil {
		s.logger.WithError(err).WithFields(store.ErrorFields(err)).Error("failed to list public initiatives")
		return nil, fmt.Errorf("could not load initiatives: %w", err)
	}

	for _, initiative := range initiatives {
		if err := s.attachMilestones(ctx, initiative); err != nil {
			return nil, err
		}
	}

	return initiatives, nil
}

func (s *Service) ListForChangemaker(ctx context.Context, changemakerID string) ([]*types.Initiative, error) {
	initiatives, err := s.initiatives.InitiativesByChangemaker(ctx, changemakerID)
	if err != nil {
		s.logger.WithError(err).WithFields(store.ErrorFields(err)).WithField("changemaker_id", changemakerID).Error("failed to list changemaker initiatives")
		return nil, fmt.Errorf("could not load initiatives: %w", err)
	}

	for _, initiative := range initiatives {
		if err := s.attachMilestones(ctx, initiative); err != nil {
			return nil, err
		}
	}

	return initiatives, nil
}

// Delete removes only the initiative row. Dependents are the cascade
// orchestrator's job and are assumed to be handled already.
func (s *Service) Delete(ctx context.Context, initiativeID string) (bool, error) {
	affected, err := s.initiatives.DeleteInitiative(ctx, initiativeID)
	if err != nil {
		s.logger.WithError(err).WithFields(store.ErrorFields(err)).WithField("initiative_id", initiativeID).Error("failed to delete initiative")
		return false, fmt.Errorf("could not delete the initiative: %w", err)
	}

	return affected > 0, nil
}

func (s *Service) attachMilestones(ctx context.Context, initiative *types.Initiative) error {
	milestones, err := s.milestones.MilestonesByInitiative(ctx, initiative.ID)
	if err != nil {
		s.logger.WithError(err).WithFields(store.ErrorFields(err)).WithField("initiative_id", initiative.ID).Error("failed to fetch milestones")
		return fmt.Errorf("could not load milestones: %w", err)
	}

	initiative.Milestones = milestones
	return nil
}

func (s *Service) autofillArea(ctx context.Context, initiative *types.Initiative) {
	if s.geocoder == nil || strings.TrimSpace(initiative.Area) != "" {
		return
	}

	address, err := s.geocoder.ReverseGeocode(ctx, initiative.Latitude, initiative.Longitude)
	if err != nil {
		s.logger.WithError(err).Debug("reverse geocoding failed, leaving area blank")
		return
	}

	initiative.Area = strings.TrimSpace(address)
}

// uploadImages uploads one file at a time. A failed upload is logged and
// skipped; the initiative keeps whatever succeeded.
func (s *Service) uploadImages(ctx context.Context, entry logrus.FieldLogger, changemakerID string, uploads []types.ImageUpload) ([]string, []string) {
	urls := make([]string, 0, len(uploads))
	failed := make([]string, 0)

	for _, upload := range uploads {
		if s.blobs == nil {
			failed = append(failed, upload.FileName)
			continue
		}

		key := storage.ImageKey(changemakerID, upload.FileName, s.now())
		url, err := s.blobs.Upload(ctx, key, upload.Data, upload.ContentType)
		if err != nil {
			entry.WithError(err).WithField("file_name", upload.FileName).Warn("image upload failed, continuing without it")
			failed = append(failed, upload.FileName)
			continue
		}

		urls = append(urls, url)
	}

	if len(failed) > 0 && s.blobs == nil {
		entry.WithField("count", len(failed)).Warn("no blob store configured, images dropped")
	}

	if len(failed) == 0 {
		failed = nil
	}

	return urls, failed
}

// discardImages removes uploads that no stored initiative refers to.
func (s *Service) discardImages(ctx context.Context, entry logrus.FieldLogger, urls []string) {
	if s.blobs == nil {
		return
	}

	for _, url := range urls {
		key, ok := storage.KeyFromURL(s.blobs, url)
		if !ok {
			continue
		}
		if err := s.blobs.Delete(ctx, key); err != nil {
			entry.WithError(err).WithField("key", key).Warn("failed to remove orphaned image")
		}
	}
}

func fromDraft(draft *types.InitiativeDraft) *types.Initiative {
	status := draft.Status
	if status == "" {
		status = types.InitiativeStatusPublished
	}

	initiative := &types.Initiative{
		InitiativeLocation: types.InitiativeLocation{
			County:       strings.TrimSpace(draft.County),
			Constituency: strings.TrimSpace(draft.Constituency),
			Area:         strings.TrimSpace(draft.Area),
			Latitude:     draft.Coordinate.Lat,
			Longitude:    draft.Coordinate.Lng,
			Geofence:     draft.Geofence,
		},
		Title:              strings.TrimSpace(draft.Title),
		ShortDescription:   strings.TrimSpace(draft.ShortDescription),
		Description:        utils.TrimmedPtr(draft.Description),
		Category:           draft.Category,
		TargetAmount:       draft.TargetAmount,
		RaisedAmount:       draft.RaisedAmount,
		Duration:           utils.TrimmedPtr(draft.Duration),
		ExpectedCompletion: draft.ExpectedCompletion,
		PaymentDetails:     draft.PaymentDetails,
		Status:             status,
	}

	if draft.Preferences != nil {
		initiative.AcceptProposals = utils.BoolPtr(draft.Preferences.AcceptProposals)
		initiative.AcceptContentCreators = utils.BoolPtr(draft.Preferences.AcceptContentCreators)
		initiative.AcceptAmbassadors = utils.BoolPtr(draft.Preferences.AcceptAmbassadors)
	}

	return initiative
}

func milestonesFromDrafts(initiativeID string, drafts []types.MilestoneDraft) []*types.Milestone {
	milestones := make([]*types.Milestone, 0, len(drafts))
	for _, d := range drafts {
		milestones = append(milestones, &types.Milestone{
			InitiativeID: initiativeID,
			Title:        strings.TrimSpace(d.Title),
			TargetDate:   strings.TrimSpace(d.TargetDate),
			Status:       milestoneStatusOrDefault(d.Status),
			Description:  utils.TrimmedPtr(d.Description),
		})
	}
	return milestones
}

func trimmedDescription(description *string) *string {
	if description == nil {
		return nil
	}
	return utils.TrimmedPtr(*description)
}

func milestoneStatusOrDefault(status types.MilestoneStatus) types.MilestoneStatus {
	if status == "" {
		return types.MilestoneStatusPending
	}
	return status
}
