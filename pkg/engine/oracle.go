package engine

// Sample is one (timestamp, price) observation from the price feed.
type Sample struct {
	Timestamp uint32 // Unix seconds
	Price     uint64 // Oracle units, same scale as Record.StrikePrice
}

// PriceOracle is the contract the engine requires from the price-feed
// collaborator. Both calls are synchronous lookups against already-ingested
// data — never network calls — so Apply stays non-blocking.
//
// A false return is a legitimate outcome, not a transient failure: for
// CurrentPrice it rejects the bet, for SettlementPrice it settles the
// position as a loss (undecidable settlement defaults against the bettor).
type PriceOracle interface {
	// CurrentPrice returns the latest known price, if any.
	CurrentPrice() (uint64, bool)

	// SettlementPrice returns the earliest recorded sample whose timestamp
	// is at or after the given time, if the feed history reaches that far.
	SettlementPrice(atOrAfter uint32) (Sample, bool)
}
