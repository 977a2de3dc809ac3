package initiative

import (
	"context"
	"fmt"
	"time"

	"changemakers/internal/identity"
	"changemakers/internal/inflight"
	"changemakers/pkg/types"

	"github.com/sirupsen/logrus"
)

const DefaultPublishTimeout = 30 * time.Second

type creator interface {
	Create(ctx context.Context, sess *identity.Session, draft *types.InitiativeDraft) (*types.CreateResult, error)
}

// Publisher wraps Create with a per-session in-flight guard and a bounded
// wait. When the wait expires the create keeps running and the caller gets
// ErrPublishTimeout, which means "verify before retrying".
type Publisher struct {
	logger  logrus.FieldLogger
	service creator
	drafts  *Drafts
	guard   *inflight.Guard
	timeout time.Duration
}

func NewPublisher(logger logrus.FieldLogger, service creator, drafts *Drafts, guard *inflight.Guard, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}

	return &Publisher{
		logger:  logger,
		service: service,
		drafts:  drafts,
		guard:   guard,
		timeout: timeout,
	}
}

type publishOutcome struct {
	result *types.CreateResult
	err    error
}

func (p *Publisher) Publish(ctx context.Context, sess *identity.Session, draft *types.InitiativeDraft) (*types.CreateResult, error) {
	if !sess.Valid() {
		return nil, types.ErrSessionInvalid
	}

	release, err := p.guard.Acquire(sess.Key() + ":publish")
	if err != nil {
		return nil, err
	}

	done := make(chan publishOutcome, 1)
	go func() {
		// The guard is held until the create actually finishes, even if the
		// caller stopped waiting.
		defer release()

		result, err := p.service.Create(context.WithoutCancel(ctx), sess, draft)
		if err == nil && p.drafts != nil {
			if clearErr := p.drafts.Clear(context.WithoutCancel(ctx), sess); clearErr != nil {
				p.logger.WithError(clearErr).Warn("initiative published but draft was not cleared")
			}
		}

		done <- publishOutcome{result: result, err: err}
	}()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case outcome := <-done:
		return outcome.result, outcome.err
	case <-timer.C:
		p.logger.WithField("timeout", p.timeout.String()).Warn("publish exceeded watchdog, still running in background")
		return nil, types.ErrPublishTimeout
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", types.ErrPublishTimeout, ctx.Err())
	}
}
