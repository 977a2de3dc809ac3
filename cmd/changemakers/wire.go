package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"changemakers/internal/cascade"
	"changemakers/internal/db"
	"changemakers/internal/geo"
	"changemakers/internal/identity"
	"changemakers/internal/initiative"
	"changemakers/internal/intake"
	"changemakers/internal/opportunity"
	"changemakers/internal/storage"
	"changemakers/internal/store"
	"changemakers/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type repositories struct {
	changemakers *store.ChangemakerRepository
	initiatives  *store.InitiativeRepository
	milestones   *store.MilestoneRepository
	jobs         *store.JobRepository
	applications *store.ApplicationRepository
	blog         *store.BlogRepository
	drafts       *store.DraftRepository
}

// application holds every long-lived dependency shared by the commands.
type application struct {
	config *types.Config
	logger *logrus.Logger
	pool   *pgxpool.Pool
	repos  repositories

	blobs    storage.BlobStore
	geocoder geo.Geocoder

	resolver    *identity.Resolver
	initiatives *initiative.Service
	drafts      *initiative.Drafts
	catalog     *opportunity.Catalog
	intake      *intake.Intake
	cascade     *cascade.Orchestrator
}

func buildApplication(ctx context.Context, config *types.Config, logger *logrus.Logger) (*application, error) {
	pool, err := db.Connect(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	blobs, err := newBlobStore(ctx, config)
	if err != nil {
		pool.Close()
		return nil, err
	}

	repos := repositories{
		changemakers: store.NewChangemakerRepository(pool),
		initiatives:  store.NewInitiativeRepository(pool),
		milestones:   store.NewMilestoneRepository(pool),
		jobs:         store.NewJobRepository(pool),
		applications: store.NewApplicationRepository(pool),
		blog:         store.NewBlogRepository(pool),
		drafts:       store.NewDraftRepository(pool),
	}

	a := &application{
		config: config,
		logger: logger,
		pool:   pool,
		repos:  repos,
		blobs:  blobs,
	}

	opts := []initiative.Option{
		initiative.WithPublicListLimit(config.PublicListLimit),
	}

	if config.GeocoderURL != "" {
		a.geocoder = geo.NewNominatimClient(config.GeocoderURL, config.GeocoderUserAgent, &http.Client{Timeout: 5 * time.Second})
		opts = append(opts, initiative.WithGeocoder(a.geocoder))
	} else {
		logger.Info("GEOCODER_URL not set, address auto-fill disabled")
	}

	if blobs != nil {
		opts = append(opts, initiative.WithBlobStore(blobs))
	}

	a.resolver = identity.NewResolver(logger, repos.changemakers)
	a.catalog = opportunity.NewCatalog(logger, repos.jobs, repos.initiatives)
	opts = append(opts, initiative.WithJobCatalog(a.catalog))

	a.initiatives = initiative.NewService(logger, repos.initiatives, repos.milestones, a.resolver, opts...)
	a.drafts = initiative.NewDrafts(logger, repos.drafts)
	a.intake = intake.New(logger, repos.applications, repos.initiatives, a.catalog)
	a.cascade = cascade.NewOrchestrator(logger, cascade.Stores{
		Initiatives:  repos.initiatives,
		Milestones:   repos.milestones,
		Jobs:         repos.jobs,
		Applications: repos.applications,
		Blog:         repos.blog,
	}, blobs)

	return a, nil
}

func (a *application) Close() {
	a.pool.Close()
}

// newBlobStore returns nil when no bucket is configured; image uploads are
// then reported as failed and image cleanup is skipped.
func newBlobStore(ctx context.Context, config *types.Config) (storage.BlobStore, error) {
	switch config.BlobBackend {
	case "supabase":
		if config.SupabaseProjectID == "" || config.SupabaseAPIKey == "" {
			return nil, fmt.Errorf("set SUPABASE_PROJECT_ID and SUPABASE_API_KEY for the supabase blob backend")
		}
		return storage.NewSupabaseStorage(config.SupabaseProjectID, config.SupabaseAPIKey, config.SupabaseBucket), nil
	case "s3", "":
		if config.S3BucketName == "" {
			return nil, nil
		}

		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}

		return storage.NewS3Storage(s3.NewFromConfig(awsConfig), config.S3BucketName, awsConfig.Region, config.S3PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown BLOB_BACKEND %q", config.BlobBackend)
	}
}
