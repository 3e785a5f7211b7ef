package option

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/tkhs-dev/updown/pkg/engine"
	"github.com/tkhs-dev/updown/pkg/oracle"
	"github.com/tkhs-dev/updown/pkg/program"
	"github.com/tkhs-dev/updown/pkg/storage"
	"github.com/tkhs-dev/updown/pkg/util"
)

// App is the node-side application: it resolves bettors to their derived
// record accounts, runs instructions through the dispatcher, and persists
// the result. One instance serializes nothing itself — the store is the
// only shared resource and each record is touched by one call at a time.
type App struct {
	programID common.Address
	feedAddr  common.Address

	store      *storage.RecordStore
	dispatcher *program.Dispatcher
	feed       *oracle.History
	log        *zap.SugaredLogger
}

// NewApp wires the application. feedAddr is the trusted oracle identity the
// dispatcher enforces; history is the live feed bound to it.
func NewApp(programID, feedAddr common.Address, eng *engine.Engine, history *oracle.History, store *storage.RecordStore, clock util.Clock, log *zap.SugaredLogger) *App {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &App{
		programID:  programID,
		feedAddr:   feedAddr,
		store:      store,
		dispatcher: program.NewDispatcher(programID, feedAddr, eng, history, clock, log),
		feed:       history,
		log:        log,
	}
}

// RecordAddress returns the derived record account for a bettor.
func (a *App) RecordAddress(bettor common.Address) common.Address {
	return program.DeriveRecordAddress(a.programID, bettor)
}

// GetRecord loads a bettor's record, or nil if none exists yet.
func (a *App) GetRecord(bettor common.Address) (*engine.Record, error) {
	return a.store.Load(a.RecordAddress(bettor))
}

// CurrentPrice exposes the oracle's latest sample for the API layer.
func (a *App) CurrentPrice() (uint64, bool) {
	return a.feed.CurrentPrice()
}

// OpenBet places a long or short position for the bettor.
func (a *App) OpenBet(bettor common.Address, cmd engine.Command) (*engine.Record, error) {
	if cmd != engine.OpenLong && cmd != engine.OpenShort {
		return nil, engine.ErrUnknownCommand
	}
	return a.apply(bettor, cmd)
}

// SettleBet resolves the bettor's matured position.
func (a *App) SettleBet(bettor common.Address) (*engine.Record, error) {
	return a.apply(bettor, engine.Settle)
}

// apply runs one command end to end: load (or create) the record account,
// dispatch, and persist only on success.
func (a *App) apply(bettor common.Address, cmd engine.Command) (*engine.Record, error) {
	addr := a.RecordAddress(bettor)
	rec, err := a.store.Create(addr)
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}

	acct := &program.Account{
		Address: addr,
		Owner:   a.programID,
		Data:    rec.Encode(),
	}
	if err := a.dispatcher.Process(acct, a.feedAddr, cmd.Encode()); err != nil {
		return nil, err
	}

	rec, err = engine.DecodeRecord(acct.Data)
	if err != nil {
		return nil, fmt.Errorf("reload record: %w", err)
	}
	if err := a.store.Save(addr, rec); err != nil {
		return nil, fmt.Errorf("persist record: %w", err)
	}
	return rec, nil
}
