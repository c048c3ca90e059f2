package settler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foresight-hq/foresight-settler/pkg/matching"
)

func TestPollTickTracksAndProcessesNewIntents(t *testing.T) {
	ml := newMockLedger()
	mm := &mockMatching{}
	svc := newTestService(ml, mm)

	intent := testIntent("intent-new")
	ml.addIntent(intent)

	ctx := context.Background()
	svc.pollTick(ctx)

	require.Eventually(t, func() bool {
		return !svc.registry.Known(intent.ID)
	}, time.Second, time.Millisecond, "new intent should be processed straight away")
	svc.wg.Wait()

	assert.Equal(t, 1, mm.SubmitCalls())
	completions := ml.Completions()
	require.Len(t, completions, 1)
	assert.True(t, completions[0].Success)
}

func TestPollTickSkipsUnresolvableIDs(t *testing.T) {
	ml := newMockLedger()
	ml.pendingIDs = []string{"intent-ghost"}
	mm := &mockMatching{}
	svc := newTestService(ml, mm)

	svc.pollTick(context.Background())
	svc.wg.Wait()

	assert.False(t, svc.registry.Known("intent-ghost"),
		"an id the ledger cannot resolve yet should be left for the next tick")
	assert.Equal(t, 0, mm.SubmitCalls())
}

func TestPollTickAbandonsTickOnListError(t *testing.T) {
	ml := newMockLedger()
	ml.pendingErr = errors.New("rpc timeout")
	ml.intents["intent-1"] = testIntent("intent-1")
	mm := &mockMatching{}
	svc := newTestService(ml, mm)

	svc.pollTick(context.Background())
	svc.wg.Wait()

	assert.Equal(t, 0, svc.registry.Stats().Tracked, "a failed id fetch must not leave partial state")
	assert.Equal(t, 0, mm.SubmitCalls())
}

func TestPollTickRedispatchesDueIntents(t *testing.T) {
	ml := newMockLedger()
	mm := &mockMatching{}
	mm.queueErrors(&matching.StatusError{StatusCode: 500, Body: "boom"})
	svc := newTestService(ml, mm)

	intent := testIntent("intent-due")
	ml.addIntent(intent)

	ctx := context.Background()
	require.True(t, svc.registry.Track(intent, time.Now()))
	svc.processIntent(ctx, intent)

	// Past the millisecond-scale backoff, the same pending id is due again
	time.Sleep(20 * time.Millisecond)
	svc.pollTick(ctx)

	require.Eventually(t, func() bool {
		return !svc.registry.Known(intent.ID)
	}, time.Second, time.Millisecond)
	svc.wg.Wait()

	assert.Equal(t, 2, mm.SubmitCalls())
}

func TestPollTickLeavesBackedOffIntentsAlone(t *testing.T) {
	ml := newMockLedger()
	mm := &mockMatching{}
	mm.queueErrors(&matching.StatusError{StatusCode: 500, Body: "boom"})

	cfg := testConfig()
	cfg.Retry.InitialDelay = time.Minute
	cfg.Retry.MaxDelay = time.Hour
	svc := newTestServiceWithConfig(cfg, ml, mm)

	intent := testIntent("intent-early")
	ml.addIntent(intent)

	ctx := context.Background()
	require.True(t, svc.registry.Track(intent, time.Now()))
	svc.processIntent(ctx, intent)
	require.Equal(t, 1, mm.SubmitCalls())

	svc.pollTick(ctx)
	svc.wg.Wait()

	assert.Equal(t, 1, mm.SubmitCalls(), "an intent inside its backoff window must not be re-dispatched")
	assert.True(t, svc.registry.Known(intent.ID))
}

func TestCompletedIntentIsNotResurrected(t *testing.T) {
	ml := newMockLedger()
	mm := &mockMatching{}
	svc := newTestService(ml, mm)

	intent := testIntent("intent-done")
	ml.addIntent(intent)

	ctx := context.Background()
	svc.pollTick(ctx)
	require.Eventually(t, func() bool {
		return !svc.registry.Known(intent.ID)
	}, time.Second, time.Millisecond)
	svc.wg.Wait()
	require.Equal(t, 1, mm.SubmitCalls())

	// The ledger has caught up and no longer lists the id: nothing to do
	ml.setPendingIDs(nil)
	svc.pollTick(ctx)
	svc.wg.Wait()
	assert.Equal(t, 1, mm.SubmitCalls(), "completed work must not be re-dispatched")
	assert.False(t, svc.registry.Known(intent.ID))

	// Only the ledger reporting the id pending again authorizes a re-track
	ml.setPendingIDs([]string{intent.ID})
	svc.pollTick(ctx)
	require.Eventually(t, func() bool {
		return !svc.registry.Known(intent.ID)
	}, time.Second, time.Millisecond)
	svc.wg.Wait()
	assert.Equal(t, 2, mm.SubmitCalls())
}
