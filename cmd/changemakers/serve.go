package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"changemakers/internal/inflight"
	"changemakers/internal/initiative"
	"changemakers/internal/server"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(config)

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	cognitoClient := cognitoidentityprovider.NewFromConfig(awsConfig)

	app, err := buildApplication(ctx, config, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	guard := inflight.NewGuard()
	publisher := initiative.NewPublisher(
		logger,
		app.initiatives,
		app.drafts,
		guard,
		time.Duration(config.PublishTimeoutSec)*time.Second,
	)

	jwkCache, err := jwk.NewCache(context.Background(), httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.CognitoIssuerURL)

	err = jwkCache.Register(context.Background(), jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register cognito jwks with cache: %w", err)
	}

	srv, err := server.New(
		config,
		logger,
		cognitoClient,
		server.Dependencies{
			Initiatives: app.initiatives,
			Publisher:   publisher,
			Drafts:      app.drafts,
			Catalog:     app.catalog,
			Intake:      app.intake,
			Cascade:     app.cascade,
			Resolver:    app.resolver,
			Profiles:    app.repos.changemakers,
			Geocoder:    app.geocoder,
			Guard:       guard,
		},
		jwkCache,
		jwksURL,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown failed")
		return err
	}

	logger.Info("server stopped")
	return nil
}
