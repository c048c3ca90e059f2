package settler

import (
	"time"

	"github.com/google/uuid"

	"github.com/foresight-hq/foresight-settler/pkg/logger"
	"github.com/foresight-hq/foresight-settler/pkg/models"
)

// convertIntent maps an on-chain intent to the matching engine's order wire
// shape. Conversion never rejects: out-of-range prices are clamped with a log
// line and unrecognized styles fall back to GTC, because the intent already
// passed the contract's own validation and a submit-side refusal would just
// strand it.
func (s *Service) convertIntent(intent *models.Intent) *models.Order {
	now := time.Now()

	var side models.Side
	var price int64

	switch intent.Kind {
	case models.KindBuyShares:
		side, price = models.SideBuy, intent.MaxPrice
	case models.KindSellShares:
		side, price = models.SideSell, intent.MinPrice
	case models.KindMintComplete:
		// Minting a complete set pays full collateral; submit at the top of
		// the range so the order is always marketable.
		side, price = models.SideBuy, models.MaxPrice
	case models.KindRedeemWinning:
		side, price = models.SideSell, 0
	default:
		s.logger.NoticeWithComp(logger.Processor, "Intent %s has unrecognized kind %d, treating as buy",
			intent.ID, intent.Kind)
		side, price = models.SideBuy, intent.MaxPrice
	}

	// A bound the user never set becomes a marketable price on the taker side
	if price == models.PriceUnset {
		if side == models.SideBuy {
			price = models.MaxPrice
		} else {
			price = 0
		}
	}

	if price < 0 {
		s.logger.NoticeWithComp(logger.Processor, "Intent %s price %d below range, clamping to 0", intent.ID, price)
		price = 0
	} else if price > models.MaxPrice {
		s.logger.NoticeWithComp(logger.Processor, "Intent %s price %d above range, clamping to %d",
			intent.ID, price, models.MaxPrice)
		price = models.MaxPrice
	}

	style := intent.Style
	if !style.Valid() {
		s.logger.NoticeWithComp(logger.Processor, "Intent %s has unrecognized order style %d, defaulting to GTC",
			intent.ID, intent.Style)
		style = models.StyleGTC
	}

	expiresAt := intent.Deadline
	if expiresAt.IsZero() {
		expiresAt = now.Add(defaultOrderHorizon)
	}

	return &models.Order{
		OrderID:      uuid.NewString(),
		IntentID:     intent.ID,
		User:         intent.User,
		MarketID:     intent.MarketID,
		ConditionID:  intent.ConditionID,
		Outcome:      intent.Outcome,
		Side:         side,
		OrderType:    style.String(),
		Price:        price,
		Amount:       intent.Amount,
		FilledAmount: "0",
		Status:       models.OrderStatusOpen,
		CreatedAt:    now,
		ExpiresAt:    expiresAt,
	}
}
