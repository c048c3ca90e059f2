package settler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foresight-hq/foresight-settler/pkg/models"
)

func TestConvertIntent(t *testing.T) {
	svc := newTestService(newMockLedger(), &mockMatching{})

	tests := []struct {
		name      string
		mutate    func(intent *models.Intent)
		wantSide  models.Side
		wantPrice int64
		wantType  string
	}{
		{
			name:      "buy with price cap",
			mutate:    func(i *models.Intent) {},
			wantSide:  models.SideBuy,
			wantPrice: 54000,
			wantType:  "limit",
		},
		{
			name: "sell with price floor",
			mutate: func(i *models.Intent) {
				i.Kind = models.KindSellShares
				i.MinPrice = 40000
			},
			wantSide:  models.SideSell,
			wantPrice: 40000,
			wantType:  "limit",
		},
		{
			name: "buy without cap is marketable",
			mutate: func(i *models.Intent) {
				i.MaxPrice = models.PriceUnset
			},
			wantSide:  models.SideBuy,
			wantPrice: models.MaxPrice,
			wantType:  "limit",
		},
		{
			name: "sell without floor is marketable",
			mutate: func(i *models.Intent) {
				i.Kind = models.KindSellShares
				i.MinPrice = models.PriceUnset
			},
			wantSide:  models.SideSell,
			wantPrice: 0,
			wantType:  "limit",
		},
		{
			name: "mint complete buys at the top of the range",
			mutate: func(i *models.Intent) {
				i.Kind = models.KindMintComplete
			},
			wantSide:  models.SideBuy,
			wantPrice: models.MaxPrice,
			wantType:  "limit",
		},
		{
			name: "redeem winning sells at the bottom of the range",
			mutate: func(i *models.Intent) {
				i.Kind = models.KindRedeemWinning
			},
			wantSide:  models.SideSell,
			wantPrice: 0,
			wantType:  "limit",
		},
		{
			name: "price above range is clamped",
			mutate: func(i *models.Intent) {
				i.MaxPrice = models.MaxPrice + 5000
			},
			wantSide:  models.SideBuy,
			wantPrice: models.MaxPrice,
			wantType:  "limit",
		},
		{
			name: "price below range is clamped",
			mutate: func(i *models.Intent) {
				i.Kind = models.KindSellShares
				i.MinPrice = -50
			},
			wantSide:  models.SideSell,
			wantPrice: 0,
			wantType:  "limit",
		},
		{
			name: "unrecognized style falls back to GTC",
			mutate: func(i *models.Intent) {
				i.Style = models.OrderStyle(240)
			},
			wantSide:  models.SideBuy,
			wantPrice: 54000,
			wantType:  "GTC",
		},
		{
			name: "unrecognized kind is treated as buy",
			mutate: func(i *models.Intent) {
				i.Kind = models.IntentKind(9)
			},
			wantSide:  models.SideBuy,
			wantPrice: 54000,
			wantType:  "limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := testIntent("intent-convert")
			tt.mutate(intent)

			order := svc.convertIntent(intent)

			assert.Equal(t, tt.wantSide, order.Side)
			assert.Equal(t, tt.wantPrice, order.Price)
			assert.Equal(t, tt.wantType, order.OrderType)

			assert.NotEmpty(t, order.OrderID)
			assert.Equal(t, intent.ID, order.IntentID)
			assert.Equal(t, intent.User, order.User)
			assert.Equal(t, intent.MarketID, order.MarketID)
			assert.Equal(t, intent.ConditionID, order.ConditionID)
			assert.Equal(t, intent.Outcome, order.Outcome)
			assert.Equal(t, intent.Amount, order.Amount)
			assert.Equal(t, "0", order.FilledAmount)
			assert.Equal(t, models.OrderStatusOpen, order.Status)
		})
	}
}

func TestConvertIntentExpiry(t *testing.T) {
	svc := newTestService(newMockLedger(), &mockMatching{})

	t.Run("deadline carries through", func(t *testing.T) {
		intent := testIntent("intent-deadline")
		intent.Deadline = time.Now().Add(15 * time.Minute).Truncate(time.Second)

		order := svc.convertIntent(intent)
		assert.Equal(t, intent.Deadline, order.ExpiresAt)
	})

	t.Run("missing deadline gets the default horizon", func(t *testing.T) {
		intent := testIntent("intent-no-deadline")
		require.True(t, intent.Deadline.IsZero())

		before := time.Now()
		order := svc.convertIntent(intent)

		assert.WithinDuration(t, before.Add(defaultOrderHorizon), order.ExpiresAt, time.Minute)
	})
}

func TestConvertIntentUniqueOrderIDs(t *testing.T) {
	svc := newTestService(newMockLedger(), &mockMatching{})
	intent := testIntent("intent-ids")

	first := svc.convertIntent(intent)
	second := svc.convertIntent(intent)
	assert.NotEqual(t, first.OrderID, second.OrderID, "each submission cycle gets a fresh order id")
}
