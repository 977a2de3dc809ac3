package initiative

import (
	"context"
	"errors"
	"testing"
	"time"

	"changemakers/internal/identity"
	"changemakers/internal/inflight"
	"changemakers/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingCreator struct {
	started chan struct{}
	unblock chan struct{}
	result  *types.CreateResult
	err     error
}

func (c *blockingCreator) Create(ctx context.Context, sess *identity.Session, draft *types.InitiativeDraft) (*types.CreateResult, error) {
	if c.started != nil {
		close(c.started)
	}
	if c.unblock != nil {
		<-c.unblock
	}
	return c.result, c.err
}

func TestPublishReturnsResultAndClearsDraft(t *testing.T) {
	drafts := NewDrafts(testLogger(), newMemDrafts())
	sess := testSession()
	_, err := drafts.Save(context.Background(), sess, boreholeDraft())
	require.NoError(t, err)

	f := newFixture()
	publisher := NewPublisher(testLogger(), f.service, drafts, inflight.NewGuard(), time.Second)

	result, err := publisher.Publish(context.Background(), sess, boreholeDraft())
	require.NoError(t, err)
	assert.Equal(t, "Borehole X", result.Initiative.Title)

	saved, err := drafts.Load(context.Background(), sess)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestPublishKeepsDraftOnFailure(t *testing.T) {
	drafts := NewDrafts(testLogger(), newMemDrafts())
	sess := testSession()
	_, err := drafts.Save(context.Background(), sess, boreholeDraft())
	require.NoError(t, err)

	creator := &blockingCreator{err: errors.New("boom")}
	publisher := NewPublisher(testLogger(), creator, drafts, inflight.NewGuard(), time.Second)

	_, err = publisher.Publish(context.Background(), sess, boreholeDraft())
	require.EqualError(t, err, "boom")

	saved, err := drafts.Load(context.Background(), sess)
	require.NoError(t, err)
	assert.NotNil(t, saved)
}

func TestPublishWatchdogExpires(t *testing.T) {
	creator := &blockingCreator{
		started: make(chan struct{}),
		unblock: make(chan struct{}),
		result:  &types.CreateResult{Initiative: &types.Initiative{ID: "late"}},
	}
	guard := inflight.NewGuard()
	publisher := NewPublisher(testLogger(), creator, nil, guard, 20*time.Millisecond)
	sess := testSession()

	_, err := publisher.Publish(context.Background(), sess, boreholeDraft())
	require.ErrorIs(t, err, types.ErrPublishTimeout)

	// The create is still running, so a second publish from the same
	// session is refused instead of producing a duplicate.
	assert.True(t, guard.InFlight(sess.Key()+":publish"))
	_, err = publisher.Publish(context.Background(), sess, boreholeDraft())
	require.ErrorIs(t, err, types.ErrSubmissionInFlight)

	close(creator.unblock)
	assert.Eventually(t, func() bool {
		return !guard.InFlight(sess.Key() + ":publish")
	}, time.Second, 5*time.Millisecond)
}

func TestPublishCallerCancelled(t *testing.T) {
	creator := &blockingCreator{unblock: make(chan struct{})}
	defer close(creator.unblock)

	publisher := NewPublisher(testLogger(), creator, nil, inflight.NewGuard(), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := publisher.Publish(ctx, testSession(), boreholeDraft())
	require.ErrorIs(t, err, types.ErrPublishTimeout)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPublishInvalidSession(t *testing.T) {
	publisher := NewPublisher(testLogger(), &blockingCreator{}, nil, inflight.NewGuard(), 0)
	sess := testSession()
	sess.Invalidate()

	_, err := publisher.Publish(context.Background(), sess, boreholeDraft())
	require.ErrorIs(t, err, types.ErrSessionInvalid)
}
