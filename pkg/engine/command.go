package engine

import (
	"encoding/binary"
	"fmt"
)

// Command is the closed set of instructions the engine accepts.
// On the wire a command is a single little-endian u32.
type Command uint32

const (
	Settle    Command = 0 // Resolve the open position against the oracle
	OpenLong  Command = 1 // Bet that settlement price ends above the strike
	OpenShort Command = 2 // Bet that settlement price ends below the strike
)

// InstructionSize is the exact length of an instruction payload.
const InstructionSize = 4

func (c Command) String() string {
	switch c {
	case Settle:
		return "settle"
	case OpenLong:
		return "open_long"
	case OpenShort:
		return "open_short"
	default:
		return fmt.Sprintf("command(%d)", uint32(c))
	}
}

// ParseInstruction decodes an instruction payload into a Command.
// The payload must be exactly 4 bytes; validity of the command code itself
// is checked by Apply so that an unknown-but-well-formed code reports
// ErrUnknownCommand rather than a decode failure.
func ParseInstruction(data []byte) (Command, error) {
	if len(data) != InstructionSize {
		return 0, fmt.Errorf("%w: %d bytes, need %d", ErrMalformedInstruction, len(data), InstructionSize)
	}
	return Command(binary.LittleEndian.Uint32(data)), nil
}

// Encode serializes the command to its instruction payload.
func (c Command) Encode() []byte {
	buf := make([]byte, InstructionSize)
	binary.LittleEndian.PutUint32(buf, uint32(c))
	return buf
}
