// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
)

// NATS Key-Value store bucket names
const (
	KVStoreNameMeetings = "meeting-agent-meetings"
	KVStoreNameAgents   = "meeting-agent-agents"
)

// tracerName is the instrumentation name for the store package.
const tracerName = "github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/infrastructure/store"

// maxUpdateAttempts bounds the read-modify-write retries of UpdateIf when
// another writer keeps winning the revision race.
const maxUpdateAttempts = 5

// INatsKeyValue is the subset of jetstream.KeyValue used by the repositories.
type INatsKeyValue interface {
	ListKeys(context.Context, ...jetstream.WatchOpt) (jetstream.KeyLister, error)
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(context.Context, string, []byte) (uint64, error)
	Update(context.Context, string, []byte, uint64) (uint64, error)
	Delete(context.Context, string, ...jetstream.KVDeleteOpt) error
}

// errPreconditionFailed is returned by an UpdateIf mutation to leave the entry untouched.
var errPreconditionFailed = errors.New("precondition failed")

// NatsBaseRepository provides common NATS KV operations that can be reused across all repositories
type NatsBaseRepository[T any] struct {
	kvStore    INatsKeyValue
	entityName string // Used in error messages (e.g., "meeting", "agent")
}

// NewNatsBaseRepository creates a new base repository for NATS KV operations
func NewNatsBaseRepository[T any](kvStore INatsKeyValue, entityName string) *NatsBaseRepository[T] {
	return &NatsBaseRepository[T]{
		kvStore:    kvStore,
		entityName: entityName,
	}
}

// IsReady checks if the repository is ready for use
func (r *NatsBaseRepository[T]) IsReady() bool {
	return r.kvStore != nil
}

func (r *NatsBaseRepository[T]) startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{
		attribute.String("db.system", "nats"),
		attribute.String("db.operation", operation),
		attribute.String("db.nats.entity", r.entityName),
	}, attrs...)
	return otel.Tracer(tracerName).Start(ctx, "nats.kv."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// fail records err on the span and returns it.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeNotFound:
		span.SetStatus(codes.Error, "not found")
	case domain.ErrorTypeConflict:
		span.SetStatus(codes.Error, "conflict")
	default:
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *NatsBaseRepository[T]) unavailable() error {
	return domain.NewUnavailableError(fmt.Sprintf("%s repository is not available", r.entityName))
}

// isRevisionMismatch reports whether err is the JetStream optimistic concurrency failure.
func isRevisionMismatch(err error) bool {
	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence {
		return true
	}
	return strings.Contains(err.Error(), "wrong last sequence")
}

// GetWithRevision retrieves an entity with its revision from NATS KV store
func (r *NatsBaseRepository[T]) GetWithRevision(ctx context.Context, key string) (*T, uint64, error) {
	ctx, span := r.startSpan(ctx, "get", attribute.String("db.nats.key", key))
	defer span.End()

	if !r.IsReady() {
		return nil, 0, fail(span, r.unavailable())
	}

	entry, err := r.kvStore.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, 0, fail(span, domain.NewNotFoundError(
				fmt.Sprintf("%s not found", r.entityName), err))
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error getting %s from NATS KV", r.entityName),
			logging.ErrKey, err, "key", key)
		return nil, 0, fail(span, domain.NewInternalError(
			fmt.Sprintf("failed to retrieve %s from store", r.entityName), err))
	}

	var entity T
	if err := json.Unmarshal(entry.Value(), &entity); err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error unmarshaling %s", r.entityName),
			logging.ErrKey, err, "key", key)
		return nil, 0, fail(span, domain.NewInternalError(
			fmt.Sprintf("failed to unmarshal %s data", r.entityName), err))
	}

	span.SetStatus(codes.Ok, "")
	return &entity, entry.Revision(), nil
}

// Get retrieves and unmarshals an entity from NATS KV store
func (r *NatsBaseRepository[T]) Get(ctx context.Context, key string) (*T, error) {
	entity, _, err := r.GetWithRevision(ctx, key)
	return entity, err
}

// Create stores a new entity under key.
func (r *NatsBaseRepository[T]) Create(ctx context.Context, key string, entity *T) error {
	ctx, span := r.startSpan(ctx, "put", attribute.String("db.nats.key", key))
	defer span.End()

	if !r.IsReady() {
		return fail(span, r.unavailable())
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fail(span, domain.NewInternalError(fmt.Sprintf("failed to marshal %s", r.entityName), err))
	}

	if _, err := r.kvStore.Put(ctx, key, data); err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error creating %s in NATS KV", r.entityName),
			logging.ErrKey, err, "key", key)
		return fail(span, domain.NewInternalError(fmt.Sprintf("failed to create %s in store", r.entityName), err))
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Update replaces an entity when the stored revision still equals revision.
func (r *NatsBaseRepository[T]) Update(ctx context.Context, key string, entity *T, revision uint64) error {
	ctx, span := r.startSpan(ctx, "update",
		attribute.String("db.nats.key", key),
		attribute.Int64("db.nats.revision", int64(revision)),
	)
	defer span.End()

	if !r.IsReady() {
		return fail(span, r.unavailable())
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fail(span, domain.NewInternalError(fmt.Sprintf("failed to marshal %s", r.entityName), err))
	}

	if _, err := r.kvStore.Update(ctx, key, data, revision); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return fail(span, domain.NewNotFoundError(fmt.Sprintf("%s not found", r.entityName), err))
		}
		if isRevisionMismatch(err) {
			return fail(span, domain.NewConflictError(fmt.Sprintf("%s has been modified", r.entityName), err))
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error updating %s in NATS KV", r.entityName),
			logging.ErrKey, err, "key", key, "revision", revision)
		return fail(span, domain.NewInternalError(fmt.Sprintf("failed to update %s in store", r.entityName), err))
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UpdateIf runs a compare-and-swap loop on key. mutate receives the current
// entity and changes it in place; returning errPreconditionFailed (or any
// other error) aborts without writing. Revision conflicts re-read the entry
// and retry, so mutate must be safe to call more than once.
func (r *NatsBaseRepository[T]) UpdateIf(ctx context.Context, key string, mutate func(*T) error) (*T, error) {
	var lastErr error
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		entity, revision, err := r.GetWithRevision(ctx, key)
		if err != nil {
			return nil, err
		}

		if err := mutate(entity); err != nil {
			return nil, err
		}

		err = r.Update(ctx, key, entity, revision)
		if err == nil {
			return entity, nil
		}
		if domain.GetErrorType(err) != domain.ErrorTypeConflict {
			return nil, err
		}

		lastErr = err
		slog.DebugContext(ctx, fmt.Sprintf("%s revision changed during conditional update, retrying", r.entityName),
			"key", key, "attempt", attempt+1)
	}

	slog.WarnContext(ctx, fmt.Sprintf("giving up conditional update of %s", r.entityName),
		"key", key, "attempts", maxUpdateAttempts, logging.ErrKey, lastErr)
	return nil, lastErr
}

// Delete removes an entity from the store with optimistic concurrency control
func (r *NatsBaseRepository[T]) Delete(ctx context.Context, key string, revision uint64) error {
	ctx, span := r.startSpan(ctx, "delete",
		attribute.String("db.nats.key", key),
		attribute.Int64("db.nats.revision", int64(revision)),
	)
	defer span.End()

	if !r.IsReady() {
		return fail(span, r.unavailable())
	}

	if err := r.kvStore.Delete(ctx, key, jetstream.LastRevision(revision)); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return fail(span, domain.NewNotFoundError(fmt.Sprintf("%s not found", r.entityName), err))
		}
		if isRevisionMismatch(err) {
			return fail(span, domain.NewConflictError(fmt.Sprintf("%s has been modified", r.entityName), err))
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error deleting %s from NATS KV", r.entityName),
			logging.ErrKey, err, "key", key, "revision", revision)
		return fail(span, domain.NewInternalError(fmt.Sprintf("failed to delete %s from store", r.entityName), err))
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListKeys lists all keys in the store
func (r *NatsBaseRepository[T]) ListKeys(ctx context.Context) ([]string, error) {
	ctx, span := r.startSpan(ctx, "list_keys")
	defer span.End()

	if !r.IsReady() {
		return nil, fail(span, r.unavailable())
	}

	lister, err := r.kvStore.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			span.SetStatus(codes.Ok, "")
			return nil, nil
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error listing %s keys from NATS KV", r.entityName),
			logging.ErrKey, err)
		return nil, fail(span, domain.NewInternalError(
			fmt.Sprintf("failed to list %s keys from store", r.entityName), err))
	}
	defer func() { _ = lister.Stop() }()

	var keys []string
	for key := range lister.Keys() {
		keys = append(keys, key)
	}

	span.SetAttributes(attribute.Int("db.nats.keys_count", len(keys)))
	span.SetStatus(codes.Ok, "")
	return keys, nil
}

// ListEntities returns every entity accepted by keep. Entries that fail to
// load are logged and skipped.
func (r *NatsBaseRepository[T]) ListEntities(ctx context.Context, keep func(*T) bool) ([]*T, error) {
	keys, err := r.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	entities := []*T{}
	for _, key := range keys {
		entity, err := r.Get(ctx, key)
		if err != nil {
			slog.WarnContext(ctx, fmt.Sprintf("failed to get %s, skipping", r.entityName),
				"key", key, logging.ErrKey, err)
			continue
		}
		if keep != nil && !keep(entity) {
			continue
		}
		entities = append(entities, entity)
	}

	return entities, nil
}
