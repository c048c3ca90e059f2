package settler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foresight-hq/foresight-settler/pkg/matching"
	"github.com/foresight-hq/foresight-settler/pkg/models"
)

func TestGatewayRecoveryDrainsParkedIntents(t *testing.T) {
	ml := newMockLedger()
	mm := &mockMatching{}

	// Slow schedule: without the drain, a parked intent would wait minutes
	cfg := testConfig()
	cfg.Retry.InitialDelay = time.Minute
	cfg.Retry.MaxDelay = time.Hour
	svc := newTestServiceWithConfig(cfg, ml, mm)

	ctx := context.Background()

	// An unrelated transient failure books one attempt while the gateway is
	// still up; it must keep its schedule through the recovery drain.
	transient := testIntent("intent-transient")
	require.True(t, svc.registry.Track(transient, time.Now()))
	mm.queueErrors(&matching.StatusError{StatusCode: 500, Body: "boom"})
	svc.processIntent(ctx, transient)

	mm.setHealthErr(errors.New("connection refused"))
	svc.probeTick(ctx)
	require.False(t, svc.monitor.IsOnline())

	// Park the intent with two gateway-unavailable failures
	parked := testIntent("intent-3")
	require.True(t, svc.registry.Track(parked, time.Now()))
	svc.processIntent(ctx, parked)
	svc.processIntent(ctx, parked)

	rec, tracked := svc.registry.Record(parked.ID)
	require.True(t, tracked)
	require.Equal(t, 2, rec.Attempts)
	require.Equal(t, models.FailGatewayUnavailable, rec.LastKind)
	require.True(t, rec.NextRetryAt.After(time.Now()), "parked intent should be scheduled well into the future")

	// Gateway comes back: the next probe drains the parked intent immediately
	mm.setHealthErr(nil)
	svc.probeTick(ctx)
	require.True(t, svc.monitor.IsOnline())

	require.Eventually(t, func() bool {
		return !svc.registry.Known(parked.ID)
	}, time.Second, time.Millisecond, "drained intent should be processed without waiting out its old schedule")

	svc.wg.Wait()

	// One real submission for the drained intent, one for the transient
	// failure earlier; the transient intent was not re-dispatched
	assert.Equal(t, 2, mm.SubmitCalls())
	transientRec, stillTracked := svc.registry.Record(transient.ID)
	require.True(t, stillTracked, "non-gateway failures must keep their backoff schedule")
	assert.Equal(t, 1, transientRec.Attempts)

	completions := ml.Completions()
	require.Len(t, completions, 1)
	assert.True(t, completions[0].Success)
	assert.Equal(t, parked.ID, completions[0].IntentID)
}

func TestProbeEdgesFireOnce(t *testing.T) {
	ml := newMockLedger()
	mm := &mockMatching{}
	svc := newTestService(ml, mm)

	ctx := context.Background()

	svc.probeTick(ctx)
	require.True(t, svc.monitor.IsOnline())

	mm.setHealthErr(errors.New("timeout"))
	svc.probeTick(ctx)
	svc.probeTick(ctx)
	assert.False(t, svc.monitor.IsOnline())
	assert.Equal(t, 2, svc.monitor.GetState().ConsecutiveFailures)

	mm.setHealthErr(nil)
	svc.probeTick(ctx)
	assert.True(t, svc.monitor.IsOnline())
	assert.Equal(t, 0, svc.monitor.GetState().ConsecutiveFailures)
}

func TestForcedDrainRedispatchesParkedIntents(t *testing.T) {
	ml := newMockLedger()
	mm := &mockMatching{}
	svc := newTestService(ml, mm)

	ctx := context.Background()
	mm.setHealthErr(errors.New("connection refused"))
	svc.probeTick(ctx)

	parked := testIntent("intent-forced")
	require.True(t, svc.registry.Track(parked, time.Now()))
	svc.processIntent(ctx, parked)

	// Operator forces a drain while the monitor still thinks the gateway is
	// down; the attempt goes through because the probe was stale
	mm.setHealthErr(nil)
	svc.monitor.RecordSuccess()

	drained := svc.DrainParked(ctx)
	assert.Equal(t, 1, drained)

	require.Eventually(t, func() bool {
		return !svc.registry.Known(parked.ID)
	}, time.Second, time.Millisecond)
	svc.wg.Wait()

	assert.Equal(t, 1, mm.SubmitCalls())
}
