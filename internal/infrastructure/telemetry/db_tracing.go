package telemetry

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing
type DBTracingConfig struct {
	Enabled         bool
	SlowQueryThresh time.Duration
	DBSystem        string
	// LogFullSQL keeps bound variables in span statements. Development only.
	LogFullSQL     bool
	TracerProvider trace.TracerProvider
}

// DefaultDBTracingConfig returns the default database tracing configuration
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin on db, plus callbacks that
// flag statements slower than the threshold on their span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return errors.Wrap(err, "register otelgorm plugin")
	}

	if cfg.SlowQueryThresh > 0 {
		if err := registerSlowQueryCallbacks(db, cfg.SlowQueryThresh); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
		zap.Bool("log_full_sql", cfg.LogFullSQL),
	)
	return nil
}

func registerSlowQueryCallbacks(db *gorm.DB, threshold time.Duration) error {
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) {
		markSlowQuery(tx.Statement.Context, threshold)
	}

	cb := db.Callback()
	registrations := []struct {
		name     string
		register func() error
	}{
		{"create", func() error {
			if err := cb.Create().Before("gorm:create").Register("billing:slow_before_create", before); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("billing:slow_after_create", after)
		}},
		{"query", func() error {
			if err := cb.Query().Before("gorm:query").Register("billing:slow_before_query", before); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("billing:slow_after_query", after)
		}},
		{"update", func() error {
			if err := cb.Update().Before("gorm:update").Register("billing:slow_before_update", before); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("billing:slow_after_update", after)
		}},
		{"delete", func() error {
			if err := cb.Delete().Before("gorm:delete").Register("billing:slow_before_delete", before); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("billing:slow_after_delete", after)
		}},
		{"raw", func() error {
			if err := cb.Raw().Before("gorm:raw").Register("billing:slow_before_raw", before); err != nil {
				return err
			}
			return cb.Raw().After("gorm:raw").Register("billing:slow_after_raw", after)
		}},
	}
	for _, r := range registrations {
		if err := r.register(); err != nil {
			return errors.Wrapf(err, "register slow query callback for %s", r.name)
		}
	}
	return nil
}

func markSlowQuery(ctx context.Context, threshold time.Duration) {
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	if elapsed < threshold {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.Bool("db.slow_query", true),
		attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
		attribute.Int64("db.slow_query_threshold_ms", threshold.Milliseconds()),
	)
}
