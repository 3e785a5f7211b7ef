package program

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account is an opaque account reference as handed to the dispatcher by the
// hosting environment: an address, the owning program, and the raw data
// buffer. The dispatcher never interprets Data beyond the record codec.
type Account struct {
	Address common.Address
	Owner   common.Address // program that controls the data buffer
	Data    []byte
}

// recordSeed namespaces derived record addresses.
var recordSeed = []byte("updown:record:v1")

// DeriveRecordAddress returns the deterministic address of a bettor's record
// account under a given program. One record per (program, bettor) pair.
func DeriveRecordAddress(programID, bettor common.Address) common.Address {
	h := crypto.Keccak256(recordSeed, programID.Bytes(), bettor.Bytes())
	return common.BytesToAddress(h[12:])
}
