package engine

import (
	"go.uber.org/zap"
)

// Default timing parameters, in seconds.
const (
	DefaultBetDuration    uint32 = 300 // maturity is 5 minutes after open
	DefaultMaturityMargin uint32 = 5   // grace added to maturity before settlement
)

// Engine is the settlement state machine. It is pure decision logic: given a
// command, the current time, the record, and the oracle, it either advances
// the record or rejects the command. It performs no I/O and no locking —
// the caller owns the record exclusively for the duration of Apply.
type Engine struct {
	// BetDuration is added to the open time to fix the maturity timestamp.
	BetDuration uint32
	// MaturityMargin is added to the maturity timestamp before settlement
	// is permitted. It is not a separate check against now.
	MaturityMargin uint32

	log *zap.SugaredLogger
}

// New creates an engine with default timing. A nil logger disables tracing.
func New(log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{
		BetDuration:    DefaultBetDuration,
		MaturityMargin: DefaultMaturityMargin,
		log:            log,
	}
}

// Apply executes one command against the record.
//
// On success the record is mutated in place; on any error it is left
// byte-for-byte unchanged, so the caller may re-persist it unconditionally
// only after a nil return. All work happens on a scratch copy that is only
// written back once the transition is fully decided.
func (e *Engine) Apply(cmd Command, now uint32, rec *Record, feed PriceOracle) error {
	next := *rec

	switch cmd {
	case Settle:
		if err := e.settle(now, &next, feed); err != nil {
			return err
		}
	case OpenLong, OpenShort:
		if err := e.open(cmd, now, &next, feed); err != nil {
			return err
		}
	default:
		return ErrUnknownCommand
	}

	*rec = next
	return nil
}

// open places a new position. Only legal while Idle.
func (e *Engine) open(cmd Command, now uint32, rec *Record, feed PriceOracle) error {
	if rec.IsBetting {
		return ErrPositionAlreadyOpen
	}
	price, ok := feed.CurrentPrice()
	if !ok {
		return ErrPriceUnavailable
	}

	rec.StrikePrice = price
	rec.MaturityTimestamp = now + e.BetDuration
	rec.IsHigher = cmd == OpenLong
	rec.IsBetting = true

	e.log.Infow("position_opened",
		"direction", cmd.String(),
		"strike", price,
		"maturity", rec.MaturityTimestamp,
	)
	return nil
}

// settle resolves the open position against the oracle's sample at or after
// maturity. Ties and a missing settlement sample both score as a loss.
func (e *Engine) settle(now uint32, rec *Record, feed PriceOracle) error {
	if !rec.IsBetting {
		return ErrNoOpenPosition
	}
	if now < rec.MaturityTimestamp+e.MaturityMargin {
		return ErrMaturityNotReached
	}

	sample, ok := feed.SettlementPrice(rec.MaturityTimestamp)
	won := ok && rec.wins(sample.Price)
	if won {
		rec.Score++
	} else if rec.Score > 0 {
		// Losses floor at zero rather than wrapping the unsigned tally.
		rec.Score--
	}
	rec.IsBetting = false

	e.log.Infow("position_settled",
		"won", won,
		"strike", rec.StrikePrice,
		"settlement", sample.Price,
		"sample_found", ok,
		"score", rec.Score,
	)
	return nil
}

// wins reports whether a settlement price resolves the position in the
// bettor's favor. Strict inequality both ways: a tie is a loss.
func (r *Record) wins(settlement uint64) bool {
	if r.IsHigher {
		return settlement > r.StrikePrice
	}
	return settlement < r.StrikePrice
}
