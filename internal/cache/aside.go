package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"pulse/internal/middleware"
	"pulse/internal/observability"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// Aside serves dest from key when cached, otherwise calls fetch (which must
// fill dest) and stores the result for ttl. Redis failures never fail the
// call; they degrade to a direct fetch.
func Aside(ctx context.Context, family, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	found, err := getJSON(ctx, key, dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "Cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		observability.CacheLookups.WithLabelValues(family, "hit").Inc()
		return nil
	}
	observability.CacheLookups.WithLabelValues(family, "miss").Inc()

	if err := fetch(); err != nil {
		return err
	}
	if err := setJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "Cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

func getJSON(ctx context.Context, key string, dest any) (bool, error) {
	ctx, span := observability.TraceRedisOperation(ctx, "get")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", key))

	raw, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	ctx, span := observability.TraceRedisOperation(ctx, "set")
	defer span.End()

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := client.Set(ctx, key, b, ttl).Err(); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// Invalidate deletes keys. Failures are logged and otherwise ignored; the
// entries expire on their own.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	ctx, span := observability.TraceRedisOperation(ctx, "del")
	defer span.End()
	if err := client.Del(ctx, keys...).Err(); err != nil {
		span.RecordError(err)
		middleware.Logger.WarnContext(ctx, "Cache invalidation failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}
