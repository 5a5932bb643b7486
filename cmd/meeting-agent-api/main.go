// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the meeting agent service API. It receives Stream Video
// webhooks, drives the meeting lifecycle, serves the agent and meeting CRUD
// API and consumes meeting summaries from NATS.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/pkg/utils"
)

func main() {
	loadDotEnv()
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	otelShutdown, err := utils.SetupOTelSDK(ctx)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up OpenTelemetry SDK")
		os.Exit(1)
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.With(logging.ErrKey, err).Error("error shutting down OpenTelemetry SDK")
		}
	}()

	// Set up JWT validator used by every CRUD route.
	jwtAuth, err := setupJWTAuth(env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up JWT authentication")
		os.Exit(1)
	}

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating JetStream context")
		return
	}

	repos, err := setupRepositories(ctx, env, js)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up repositories")
		return
	}
	defer func() {
		if err := repos.Close(); err != nil {
			slog.With(logging.ErrKey, err).Error("error closing repositories")
		}
	}()

	jobSubmitter, closeJobSubmitter, err := setupJobSubmitter(ctx, env, natsConn, js)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up job submitter")
		return
	}
	defer func() {
		if err := closeJobSubmitter(); err != nil {
			slog.With(logging.ErrKey, err).Error("error closing job submitter")
		}
	}()

	callController := setupCallController(env)
	defer func() {
		if err := callController.Close(); err != nil {
			slog.With(logging.ErrKey, err).Error("error closing agent sessions")
		}
	}()

	// Initialize services
	authService := service.NewAuthService(jwtAuth)
	agentService := service.NewAgentService(repos.Agent)
	meetingService := service.NewMeetingService(repos.Meeting, repos.Agent)
	lifecycleService := service.NewMeetingLifecycleService(
		repos.Meeting,
		repos.Agent,
		callController,
		service.NewJobEnqueuer(jobSubmitter),
		service.AgentConfig{
			ModelAPIKey: env.Agent.ModelAPIKey,
			Model:       env.Agent.Model,
		},
	)
	streamWebhookService := service.NewStreamWebhookService(setupWebhookValidator(env), lifecycleService)

	// Initialize handlers
	processingHandler := handlers.NewMeetingProcessingHandler(lifecycleService)

	svc := NewMeetingAgentAPI(authService, agentService, meetingService, streamWebhookService)

	httpServer := setupHTTPServer(flags, svc, &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	if err := createNatsSubscriptions(ctx, processingHandler, natsConn); err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}

// gracefulShutdown stops the HTTP server, drains NATS and waits for both.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	// Cancel the background context.
	cancel()

	go func() {
		// Run the HTTP shutdown in a goroutine so the NATS draining can also start.
		ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownSeconds*time.Second)
		defer cancel()

		slog.With("addr", httpServer.Addr).Info("shutting down http server")
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.With(logging.ErrKey, err).Error("http shutdown error")
		}
		// Decrement the wait group.
		gracefulCloseWG.Done()
	}()

	// Drain the NATS connection, which will drain all subscriptions, then close
	// the connection when complete.
	if !natsConn.IsClosed() && !natsConn.IsDraining() {
		slog.Info("draining NATS connections")
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
			// Skip waiting or checking error channel.
			return
		}
	}

	// Wait for the HTTP graceful shutdown and for the NATS ClosedHandler
	// callback to decrement the wait group.
	gracefulCloseWG.Wait()
	slog.Info("graceful shutdown complete")
}
