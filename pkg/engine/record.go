package engine

import (
	"encoding/binary"
	"fmt"
)

// RecordSize is the fixed width of an encoded Record.
// Layout (little-endian, field order is the persisted wire format and must
// not change across upgrades — there is no version byte):
//
//	score:u32 | maturity_timestamp:u32 | strike_price:u64 | is_higher:u8 | is_betting:u8
const RecordSize = 4 + 4 + 8 + 1 + 1

// Record is the persisted state of one option account: a running score and
// at most one open position. It cycles between two phases, Idle
// (IsBetting=false) and Open (IsBetting=true).
type Record struct {
	Score             uint32 // Running tally of settled outcomes (wins - losses, floored at 0)
	MaturityTimestamp uint32 // Unix time when the open position becomes settleable
	StrikePrice       uint64 // Price captured at bet time, oracle units
	IsHigher          bool   // true = bettor wins if settlement price > strike
	IsBetting         bool   // true = a position is currently open
}

// Phase is the logical lifecycle phase of a record.
type Phase int8

const (
	Idle Phase = iota // No open position
	Open              // One position open, awaiting settlement
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Open:
		return "open"
	default:
		return "unknown"
	}
}

// Phase returns the record's current lifecycle phase.
func (r *Record) Phase() Phase {
	if r.IsBetting {
		return Open
	}
	return Idle
}

// Encode serializes the record into the fixed wire layout.
func (r *Record) Encode() []byte {
	buf := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], r.Score)
	binary.LittleEndian.PutUint32(buf[4:8], r.MaturityTimestamp)
	binary.LittleEndian.PutUint64(buf[8:16], r.StrikePrice)
	buf[16] = flagByte(r.IsHigher)
	buf[17] = flagByte(r.IsBetting)
	return buf
}

// DecodeRecord parses a record from its fixed wire layout.
// The buffer must be exactly RecordSize bytes: truncated and over-allocated
// buffers are both rejected rather than partially decoded. Flag bytes must
// be exactly 0 or 1 — anything else is a corrupt record, not an implicit
// true.
func DecodeRecord(buf []byte) (*Record, error) {
	if len(buf) != RecordSize {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrMalformedRecord, len(buf), RecordSize)
	}
	isHigher, err := parseFlag(buf[16])
	if err != nil {
		return nil, fmt.Errorf("%w: is_higher %v", ErrMalformedRecord, err)
	}
	isBetting, err := parseFlag(buf[17])
	if err != nil {
		return nil, fmt.Errorf("%w: is_betting %v", ErrMalformedRecord, err)
	}
	return &Record{
		Score:             binary.LittleEndian.Uint32(buf[0:4]),
		MaturityTimestamp: binary.LittleEndian.Uint32(buf[4:8]),
		StrikePrice:       binary.LittleEndian.Uint64(buf[8:16]),
		IsHigher:          isHigher,
		IsBetting:         isBetting,
	}, nil
}

func flagByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func parseFlag(b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("flag byte = %#x", b)
	}
}
