package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"changemakers/internal/cascade"
	"changemakers/internal/geo"
	"changemakers/internal/identity"
	"changemakers/internal/inflight"
	"changemakers/internal/initiative"
	"changemakers/internal/intake"
	"changemakers/internal/opportunity"
	"changemakers/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type CognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
	GlobalSignOut(ctx context.Context, params *cognitoidentityprovider.GlobalSignOutInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error)
}

// KeySet is satisfied by *jwk.Cache.
type KeySet interface {
	Lookup(ctx context.Context, u string) (jwk.Set, error)
}

type Dependencies struct {
	Initiatives *initiative.Service
	Publisher   *initiative.Publisher
	Drafts      *initiative.Drafts
	Catalog     *opportunity.Catalog
	Intake      *intake.Intake
	Cascade     *cascade.Orchestrator
	Resolver    *identity.Resolver
	Profiles    identity.ProfileSource
	Geocoder    geo.Geocoder
	Guard       *inflight.Guard
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	initiatives *initiative.Service
	publisher   *initiative.Publisher
	drafts      *initiative.Drafts
	catalog     *opportunity.Catalog
	intake      *intake.Intake
	cascade     *cascade.Orchestrator
	resolver    *identity.Resolver
	profiles    identity.ProfileSource
	geocoder    geo.Geocoder
	guard       *inflight.Guard

	sessions *sessionRegistry

	cognitoClient CognitoAPI
	cookie        *securecookie.SecureCookie

	jwksCache KeySet
	jwksURL   string

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	cognitoClient CognitoAPI,
	deps Dependencies,
	jwksCache KeySet,
	jwksURL string,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cookie block key: %w", err)
	}

	s := &Service{
		logger: logger,
		config: config,

		initiatives: deps.Initiatives,
		publisher:   deps.Publisher,
		drafts:      deps.Drafts,
		catalog:     deps.Catalog,
		intake:      deps.Intake,
		cascade:     deps.Cascade,
		resolver:    deps.Resolver,
		profiles:    deps.Profiles,
		geocoder:    deps.Geocoder,
		guard:       deps.Guard,

		sessions: newSessionRegistry(time.Duration(config.SessionMaxAgeSec) * time.Second),

		cognitoClient: cognitoClient,
		cookie:        securecookie.New(hashKey, blockKey),

		jwksCache: jwksCache,
		jwksURL:   jwksURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/places", s.handleGetPlaces, http.MethodGet)
	r.HandleFunc("/initiatives", s.handleListInitiatives, http.MethodGet)
	r.HandleFunc("/initiatives/:id", s.handleGetInitiative, http.MethodGet)
	r.HandleFunc("/initiatives/:id/jobs", s.handleListJobs, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RateLimit(s.config.RateLimitPerMinute, time.Minute))

		r.HandleFunc("/register", s.handlePostRegister, http.MethodPost)
		r.HandleFunc("/register/confirm", s.handlePostRegisterConfirm, http.MethodPost)
		r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
		r.HandleFunc("/initiatives/:id/applications/:kind", s.handleSubmitApplication, http.MethodPost)
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/logout", s.handlePostLogout, http.MethodPost)

		r.HandleFunc("/initiatives", s.handleCreateInitiative, http.MethodPost)
		r.HandleFunc("/initiatives/:id", s.handleUpdateInitiative, http.MethodPut)
		r.HandleFunc("/initiatives/:id", s.handleDeleteInitiative, http.MethodDelete)
		r.HandleFunc("/initiatives/:id/jobs", s.handleAddJobs, http.MethodPost)
		r.HandleFunc("/initiatives/:id/jobs/:jobID/deactivate", s.handleDeactivateJob, http.MethodPost)
		r.HandleFunc("/initiatives/:id/preferences", s.handleSetPreferences, http.MethodPut)
		r.HandleFunc("/initiatives/:id/applications/:kind", s.handleListApplications, http.MethodGet)
		r.HandleFunc("/applications/:kind/:applicationID/:action", s.handleReviewApplication, http.MethodPost)

		r.HandleFunc("/me", s.handleGetMe, http.MethodGet)
		r.HandleFunc("/me/initiatives", s.handleMyInitiatives, http.MethodGet)
		r.HandleFunc("/me/draft", s.handleGetDraft, http.MethodGet)
		r.HandleFunc("/me/draft", s.handlePutDraft, http.MethodPut)
		r.HandleFunc("/me/draft", s.handleDeleteDraft, http.MethodDelete)
		r.HandleFunc("/dashboard", s.handleDashboard, http.MethodGet)
	})
}

func (s *Service) sessionFromContext(ctx context.Context) (*identity.Session, error) {
	sess, ok := ctx.Value(contextKeySession).(*identity.Session)
	if !ok || sess == nil {
		return nil, types.ErrSessionInvalid
	}
	return sess, nil
}
