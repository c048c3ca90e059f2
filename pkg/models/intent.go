package models

import (
	"time"
)

// IntentKind identifies the trading action an intent asks for
type IntentKind uint8

const (
	// KindBuyShares buys outcome shares on the orderbook
	KindBuyShares IntentKind = iota
	// KindSellShares sells outcome shares on the orderbook
	KindSellShares
	// KindMintComplete acquires a complete set of outcome shares
	KindMintComplete
	// KindRedeemWinning disposes of winning outcome shares after resolution
	KindRedeemWinning
)

// String returns the wire name of the intent kind
func (k IntentKind) String() string {
	switch k {
	case KindBuyShares:
		return "buy_shares"
	case KindSellShares:
		return "sell_shares"
	case KindMintComplete:
		return "mint_complete"
	case KindRedeemWinning:
		return "redeem_winning"
	}
	return "unknown"
}

// Valid reports whether the kind is one of the known intent kinds
func (k IntentKind) Valid() bool {
	return k <= KindRedeemWinning
}

// OrderStyle identifies the execution style requested by an intent
type OrderStyle uint8

const (
	// StyleMarket executes immediately at the best available price
	StyleMarket OrderStyle = iota
	// StyleLimit rests on the book at the requested price
	StyleLimit
	// StyleGTC rests on the book until cancelled
	StyleGTC
	// StyleGTD rests on the book until its expiry time
	StyleGTD
	// StyleFOK fills completely or not at all
	StyleFOK
	// StyleFAK fills what it can and cancels the rest
	StyleFAK
)

// String returns the wire name of the order style
func (s OrderStyle) String() string {
	switch s {
	case StyleMarket:
		return "market"
	case StyleLimit:
		return "limit"
	case StyleGTC:
		return "GTC"
	case StyleGTD:
		return "GTD"
	case StyleFOK:
		return "FOK"
	case StyleFAK:
		return "FAK"
	}
	return "unknown"
}

// Valid reports whether the style is one of the known order styles
func (s OrderStyle) Valid() bool {
	return s <= StyleFAK
}

// PriceUnset marks an intent price bound the user did not set
const PriceUnset int64 = -1

// MaxPrice is the upper bound of the fixed-point price range,
// representing a probability of 1.0 (prices are scaled by 100000)
const MaxPrice int64 = 100000

// Intent represents a trading intent observed on the ledger.
// It is immutable once observed; the orchestrator never mutates it.
type Intent struct {
	ID          string     `json:"id"`
	User        string     `json:"user"`
	MarketID    string     `json:"market_id"`
	ConditionID string     `json:"condition_id"`
	Kind        IntentKind `json:"kind"`
	Outcome     uint8      `json:"outcome"`
	Amount      string     `json:"amount"`
	MaxPrice    int64      `json:"max_price"` // PriceUnset when the user set no cap
	MinPrice    int64      `json:"min_price"` // PriceUnset when the user set no floor
	Deadline    time.Time  `json:"deadline"`  // zero when the intent carries no deadline
	Style       OrderStyle `json:"order_style"`
}
