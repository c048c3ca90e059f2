package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceData is a market price snapshot from the matching engine
type PriceData struct {
	MarketID  string          `json:"market_id"`
	Outcome   uint8           `json:"outcome"`
	BestBid   int64           `json:"best_bid"`
	BestAsk   int64           `json:"best_ask"`
	LastPrice int64           `json:"last_price"`
	Volume24h decimal.Decimal `json:"volume_24h"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BookLevel is one price level of an orderbook side
type BookLevel struct {
	Price int64           `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// OrderbookSnapshot is the resting book for one market outcome
type OrderbookSnapshot struct {
	MarketID  string      `json:"market_id"`
	Outcome   uint8       `json:"outcome"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
	UpdatedAt time.Time   `json:"updated_at"`
}
