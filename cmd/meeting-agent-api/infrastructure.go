// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"gorm.io/gorm"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/infrastructure/auth"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/infrastructure/gcppubsub"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/infrastructure/store"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/infrastructure/store/postgres"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/infrastructure/stream/api"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/infrastructure/stream/webhook"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
)

const (
	// gracefulShutdownSeconds should be higher than NATS client
	// request timeout, and lower than the pod or liveness probe's
	// terminationGracePeriodSeconds.
	gracefulShutdownSeconds = 25

	// natsQueueName is the queue group shared by every replica.
	natsQueueName = "lfx.meeting-agent-api.queue"
)

// repositories groups the persistence backends selected at startup.
type repositories struct {
	Meeting domain.MeetingRepository
	Agent   domain.AgentRepository
	db      *gorm.DB
}

// Close releases the SQL pool, if any.
func (r repositories) Close() error {
	if r.db == nil {
		return nil
	}
	return postgres.Close(r.db)
}

// setupJWTAuth configures JWT authentication for the service
func setupJWTAuth(env environment) (*auth.JWTAuth, error) {
	return auth.NewJWTAuth(auth.JWTAuthConfig{
		JWKSURL:            env.JWT.JWKSURL,
		Audience:           env.JWT.Audience,
		MockLocalPrincipal: env.JWT.MockLocalPrincipal,
	})
}

// setupNATS connects to NATS. The connection's closed handler releases the
// graceful shutdown wait group once the drain started by gracefulShutdown
// completes.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	slog.InfoContext(ctx, "connecting to NATS", "url", env.NatsURL)

	gracefulCloseWG.Add(1)
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.Name("lfx-v2-meeting-agent-service"),
		nats.DrainTimeout(gracefulShutdownSeconds*time.Second),
		nats.MaxReconnects(-1),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection established")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
			} else {
				slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
			}
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if ctx.Err() != nil {
				// Expected: the service is shutting down and drained the connection.
				gracefulCloseWG.Done()
				return
			}
			slog.ErrorContext(ctx, "NATS connection closed unexpectedly", logging.PriorityCritical())
			gracefulCloseWG.Done()
			done <- os.Interrupt
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return natsConn, nil
}

// getKeyValueStore returns the named bucket, creating it when it does not exist.
func getKeyValueStore(ctx context.Context, js jetstream.JetStream, bucket string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, bucket)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, fmt.Errorf("failed to open key-value bucket %s: %w", bucket, err)
	}

	slog.InfoContext(ctx, "creating key-value bucket", "bucket", bucket)
	kv, err = js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  bucket,
		History: 5,
		Storage: jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create key-value bucket %s: %w", bucket, err)
	}
	return kv, nil
}

// setupRepositories selects the meeting and agent persistence backend.
func setupRepositories(ctx context.Context, env environment, js jetstream.JetStream) (repositories, error) {
	if env.StoreBackend == storeBackendPostgres {
		db, err := postgres.Open(ctx, postgres.DefaultConfig(env.DatabaseURL))
		if err != nil {
			return repositories{}, err
		}
		if err := postgres.AutoMigrate(ctx, db); err != nil {
			_ = postgres.Close(db)
			return repositories{}, err
		}
		slog.InfoContext(ctx, "using postgres store")
		return repositories{
			Meeting: postgres.NewMeetingRepository(db),
			Agent:   postgres.NewAgentRepository(db),
			db:      db,
		}, nil
	}

	meetings, err := getKeyValueStore(ctx, js, store.KVStoreNameMeetings)
	if err != nil {
		return repositories{}, err
	}
	agents, err := getKeyValueStore(ctx, js, store.KVStoreNameAgents)
	if err != nil {
		return repositories{}, err
	}

	slog.InfoContext(ctx, "using NATS key-value store")
	return repositories{
		Meeting: store.NewNatsMeetingRepository(meetings),
		Agent:   store.NewNatsAgentRepository(agents),
	}, nil
}

// setupJobSubmitter selects the post-processing job backend. The returned
// closer releases backend resources on shutdown.
func setupJobSubmitter(ctx context.Context, env environment, natsConn *nats.Conn, js jetstream.JetStream) (domain.JobSubmitter, func() error, error) {
	if env.JobsBackend == jobsBackendPubSub {
		submitter, err := gcppubsub.NewJobSubmitter(ctx, gcppubsub.Config{
			ProjectID:   env.PubSubProjectID,
			TopicName:   env.PubSubTopic,
			CreateTopic: true,
		})
		if err != nil {
			return nil, nil, err
		}
		slog.InfoContext(ctx, "submitting jobs to pubsub", "topic", env.PubSubTopic)
		return submitter, submitter.Close, nil
	}

	if _, err := js.CreateOrUpdateStream(ctx, messaging.JobsStreamConfig); err != nil {
		return nil, nil, fmt.Errorf("failed to create jobs stream: %w", err)
	}
	slog.InfoContext(ctx, "submitting jobs to JetStream", "stream", messaging.JobsStreamName)
	return messaging.NewNatsJobSubmitter(natsConn, js), func() error { return nil }, nil
}

// setupCallController creates the Stream video client.
func setupCallController(env environment) *api.Client {
	if env.Stream.APIKey == "" || env.Stream.APISecret == "" {
		slog.Warn("STREAM_API_KEY or STREAM_API_SECRET not set, agents cannot join calls")
	}
	return api.NewClient(api.Config{
		APIKey:    env.Stream.APIKey,
		APISecret: env.Stream.APISecret,
		BaseURL:   env.Stream.BaseURL,
	})
}

// setupWebhookValidator creates the Stream webhook validator.
func setupWebhookValidator(env environment) domain.WebhookValidator {
	if env.Stream.WebhookValidationDisabled {
		slog.Warn("Stream webhook signature validation is disabled")
		return webhook.NewMockWebhookValidator()
	}
	return webhook.NewStreamWebhookValidator(env.Stream.APIKey, env.Stream.APISecret)
}

// createNatsSubscriptions subscribes the message handler to its subjects.
func createNatsSubscriptions(ctx context.Context, handler domain.MessageHandler, natsConn *nats.Conn) error {
	subjects := []string{
		models.MeetingSummarizedSubject,
	}

	for _, subject := range subjects {
		slog.InfoContext(ctx, "subscribing to NATS subject", "subject", subject, "queue", natsQueueName)
		_, err := natsConn.QueueSubscribe(subject, natsQueueName, func(msg *nats.Msg) {
			handler.HandleMessage(ctx, messaging.NewNatsMessage(msg))
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
	}

	return nil
}
