package api

// API response types for REST endpoints and WebSocket messages

// RecordInfo is the decoded state of a bettor's record account.
type RecordInfo struct {
	Account           string `json:"account"`           // Derived record account address
	Score             uint32 `json:"score"`             // Running tally of settled outcomes
	Phase             string `json:"phase"`             // "idle" or "open"
	StrikePrice       uint64 `json:"strikePrice"`       // Oracle units; meaningful while open
	MaturityTimestamp uint32 `json:"maturityTimestamp"` // Unix seconds; meaningful while open
	Direction         string `json:"direction"`         // "up" or "down"; meaningful while open
}

// PriceInfo is the oracle's latest sample.
type PriceInfo struct {
	Price     uint64 `json:"price"`
	Available bool   `json:"available"`
}

// BetRequest is the payload for POST /api/v1/bets.
type BetRequest struct {
	Bettor    string `json:"bettor"`    // Bettor's address (0x...)
	Direction string `json:"direction"` // "up" or "down"
}

// SettleRequest is the payload for POST /api/v1/settle.
type SettleRequest struct {
	Bettor string `json:"bettor"`
}

// PriceTick is broadcast over the WebSocket for every ingested sample.
type PriceTick struct {
	Type      string `json:"type"` // always "tick"
	Timestamp uint32 `json:"timestamp"`
	Price     uint64 `json:"price"`
}

// ErrorResponse is returned for all failures. Code is the stable engine
// error code (0 when the failure is outside the engine's closed set).
type ErrorResponse struct {
	Error string `json:"error"`
	Code  uint32 `json:"code"`
}
