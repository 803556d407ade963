package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"zing_pool/internal/apperr"
)

const tracerName = "zing_pool/internal/store"

// Executor runs named procedures against one store handle. Every call is
// bounded by the handle's timeout and traced.
type Executor struct {
	db      *gorm.DB
	timeout time.Duration
	tracer  trace.Tracer
}

func NewExecutor(db *gorm.DB, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Executor{db: db, timeout: timeout, tracer: otel.Tracer(tracerName)}
}

// Run executes fn in a single transaction. fn must only use the tx it is
// given. Any error rolls the whole transaction back and comes out as an
// *apperr.Error.
func (e *Executor) Run(ctx context.Context, name string, fn func(tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	ctx, span := e.tracer.Start(ctx, name, trace.WithAttributes(attribute.Bool("db.transaction", true)))
	defer span.End()

	err := e.db.WithContext(ctx).Transaction(fn)
	return e.finish(ctx, span, name, err)
}

// Do runs fn outside a transaction, for single conditional statements.
func (e *Executor) Do(ctx context.Context, name string, fn func(db *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	ctx, span := e.tracer.Start(ctx, name, trace.WithAttributes(attribute.Bool("db.transaction", false)))
	defer span.End()

	err := fn(e.db.WithContext(ctx))
	return e.finish(ctx, span, name, err)
}

func (e *Executor) finish(ctx context.Context, span trace.Span, name string, err error) error {
	if err == nil {
		return nil
	}

	classified := classify(ctx, err)
	kind := apperr.KindOf(classified)
	span.SetAttributes(attribute.String("zing.error_kind", kind.String()))

	fields := logrus.Fields{"procedure": name, "kind": kind.String()}
	if kind == apperr.Unknown {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logrus.WithFields(fields).WithError(err).Error("Store procedure failed")
	} else {
		logrus.WithFields(fields).WithError(err).Debug("Store procedure rejected")
	}
	return classified
}
