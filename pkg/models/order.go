package models

import (
	"time"
)

// Side is the taker side of an order
type Side string

const (
	// SideBuy buys outcome shares
	SideBuy Side = "buy"
	// SideSell sells outcome shares
	SideSell Side = "sell"
)

// Order statuses reported by the matching engine
const (
	OrderStatusOpen      = "open"
	OrderStatusFilled    = "filled"
	OrderStatusCancelled = "cancelled"
)

// Order is the wire shape submitted to the matching engine
type Order struct {
	OrderID      string    `json:"order_id"`
	IntentID     string    `json:"intent_id"`
	User         string    `json:"user"`
	MarketID     string    `json:"market_id"`
	ConditionID  string    `json:"condition_id"`
	Outcome      uint8     `json:"outcome"`
	Side         Side      `json:"side"`
	OrderType    string    `json:"order_type"`
	Price        int64     `json:"price"` // fixed-point, 0..100000
	Amount       string    `json:"amount"`
	FilledAmount string    `json:"filled_amount"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Trade is a fill reported by the matching engine
type Trade struct {
	TradeID    string    `json:"trade_id"`
	OrderID    string    `json:"order_id"`
	IntentID   string    `json:"intent_id"`
	MarketID   string    `json:"market_id"`
	Outcome    uint8     `json:"outcome"`
	Side       Side      `json:"side"`
	Price      int64     `json:"price"`
	Amount     string    `json:"amount"`
	ExecutedAt time.Time `json:"executed_at"`
}
