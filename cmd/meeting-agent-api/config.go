// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/pkg/utils"
)

const (
	storeBackendNATS     = "nats"
	storeBackendPostgres = "postgres"

	jobsBackendNATS   = "nats"
	jobsBackendPubSub = "pubsub"

	defaultPort        = "8080"
	defaultNatsURL     = "nats://localhost:4222"
	defaultPubSubTopic = "meeting-agent-jobs"
)

// flags are the command line flags for the meeting agent service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the meeting agent service.
type environment struct {
	Port    string
	NatsURL string

	StoreBackend string
	DatabaseURL  string

	JobsBackend     string
	PubSubProjectID string
	PubSubTopic     string

	Stream streamConfig
	Agent  agentConfig
	JWT    jwtConfig
}

// streamConfig holds the call provider credentials.
type streamConfig struct {
	APIKey                    string
	APISecret                 string
	BaseURL                   string
	WebhookValidationDisabled bool
}

// agentConfig holds the realtime model settings.
type agentConfig struct {
	ModelAPIKey string
	Model       string
}

// jwtConfig holds the caller authentication settings.
type jwtConfig struct {
	JWKSURL            string
	Audience           string
	MockLocalPrincipal string
}

// loadDotEnv loads a local .env file into the process environment. Variables
// that are already set win over the file.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.With(logging.ErrKey, err).Warn("failed to load .env file")
	}
}

// parseFlags parses command line flags for the meeting agent service
func parseFlags(envPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", envPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the meeting agent service
func parseEnv() environment {
	return environment{
		Port:            utils.Coalesce(os.Getenv("PORT"), defaultPort),
		NatsURL:         utils.Coalesce(os.Getenv("NATS_URL"), defaultNatsURL),
		StoreBackend:    parseStoreBackend(os.Getenv("STORE_BACKEND")),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JobsBackend:     parseJobsBackend(os.Getenv("JOBS_BACKEND")),
		PubSubProjectID: os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubTopic:     utils.Coalesce(os.Getenv("PUBSUB_TOPIC"), defaultPubSubTopic),
		Stream: streamConfig{
			APIKey:                    os.Getenv("STREAM_API_KEY"),
			APISecret:                 os.Getenv("STREAM_API_SECRET"),
			BaseURL:                   os.Getenv("STREAM_BASE_URL"),
			WebhookValidationDisabled: os.Getenv("STREAM_WEBHOOK_VALIDATION_DISABLED") == "true",
		},
		Agent: agentConfig{
			ModelAPIKey: os.Getenv("OPENAI_API_KEY"),
			Model:       os.Getenv("OPENAI_REALTIME_MODEL"),
		},
		JWT: jwtConfig{
			JWKSURL:            os.Getenv("JWKS_URL"),
			Audience:           os.Getenv("JWT_AUDIENCE"),
			MockLocalPrincipal: os.Getenv("JWT_AUTH_DISABLED_MOCK_LOCAL_PRINCIPAL"),
		},
	}
}

func parseStoreBackend(raw string) string {
	switch raw {
	case "postgres", "postgresql", "pg":
		return storeBackendPostgres
	case "", "nats", "kv":
		return storeBackendNATS
	default:
		slog.Warn("unknown STORE_BACKEND, using nats", "value", raw)
		return storeBackendNATS
	}
}

func parseJobsBackend(raw string) string {
	switch raw {
	case "pubsub", "gcp":
		return jobsBackendPubSub
	case "", "nats", "jetstream":
		return jobsBackendNATS
	default:
		slog.Warn("unknown JOBS_BACKEND, using nats", "value", raw)
		return jobsBackendNATS
	}
}
