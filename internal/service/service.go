package service

import (
	"context"
	"time"

	"github.com/mbeoliero/kit/log"
	"github.com/mbeoliero/parley/internal/entity"
	"github.com/mbeoliero/parley/pkg/constant"
	"github.com/mbeoliero/parley/pkg/errcode"
	"github.com/mbeoliero/parley/pkg/metrics"
)

// Clock returns the current time in unix milliseconds
type Clock func() int64

type options struct {
	now          Clock
	typingWindow time.Duration
	lockWait     time.Duration
}

// Option configures a service
type Option func(*options)

// WithClock replaces the wall clock
func WithClock(now Clock) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithTypingWindow sets how long a typing signal stays live
func WithTypingWindow(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.typingWindow = d
		}
	}
}

// WithLockWait sets how long direct-conversation creation waits for the pair lock
func WithLockWait(d time.Duration) Option {
	return func(o *options) {
		o.lockWait = d
	}
}

func newOptions(opts []Option) options {
	o := options{
		now:          entity.NowUnixMilli,
		typingWindow: constant.TypingFreshnessWindow,
		lockWait:     constant.DirectLockWait,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// internalError logs a store failure and hides it behind ErrInternalServer
func internalError(ctx context.Context, op string, err error) error {
	log.CtxError(ctx, "%s failed: %v", op, err)
	metrics.StoreErrors.WithLabelValues(op).Inc()
	return errcode.ErrInternalServer
}

// txError passes business errors raised inside a transaction through untouched
func txError(ctx context.Context, op string, err error) error {
	if e, ok := errcode.As(err); ok {
		return e
	}
	return internalError(ctx, op, err)
}
