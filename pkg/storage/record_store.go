package storage

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tkhs-dev/updown/pkg/engine"
)

// RecordStore persists encoded position records in Pebble, one entry per
// record account. Values are the fixed 18-byte wire layout, so what's on
// disk is exactly what the dispatcher's persistence contract promises.
//
// Key schema:
//
//	rec:<address> → encoded Record
type RecordStore struct {
	db *pebble.DB
}

const prefixRecord = "rec:"

// recordKey returns the key for a record account.
// Format: "rec:{address}"
func recordKey(addr common.Address) []byte {
	return []byte(fmt.Sprintf("%s%s", prefixRecord, addr.Hex()))
}

// NewRecordStore opens (or creates) the store at path.
func NewRecordStore(path string) (*RecordStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	return &RecordStore{db: db}, nil
}

func (s *RecordStore) Close() error { return s.db.Close() }

// Save persists a record under its account address.
func (s *RecordStore) Save(addr common.Address, rec *engine.Record) error {
	if err := s.db.Set(recordKey(addr), rec.Encode(), pebble.Sync); err != nil {
		return fmt.Errorf("save record %s: %w", addr.Hex(), err)
	}
	return nil
}

// Load returns the record for an account, or nil if none exists.
func (s *RecordStore) Load(addr common.Address) (*engine.Record, error) {
	val, closer, err := s.db.Get(recordKey(addr))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", addr.Hex(), err)
	}
	defer closer.Close()

	rec, err := engine.DecodeRecord(val)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", addr.Hex(), err)
	}
	return rec, nil
}

// Create initializes a zeroed record for an account if absent and returns
// it. Record creation is the account-creation collaborator's job, not the
// engine's: a fresh record starts Idle with score 0.
func (s *RecordStore) Create(addr common.Address) (*engine.Record, error) {
	rec, err := s.Load(addr)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}
	rec = &engine.Record{}
	if err := s.Save(addr, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
