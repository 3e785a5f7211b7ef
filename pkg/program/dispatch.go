package program

import (
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/tkhs-dev/updown/pkg/engine"
	"github.com/tkhs-dev/updown/pkg/util"
)

// Dispatcher is the thin authorization and persistence shim around the
// engine. It checks account preconditions, decodes the instruction and the
// record, invokes the engine, and writes the record back into the account
// buffer only when the engine succeeded.
type Dispatcher struct {
	programID   common.Address
	trustedFeed common.Address // configured trusted oracle identity

	engine *engine.Engine
	feed   engine.PriceOracle
	clock  util.Clock
	log    *zap.SugaredLogger
}

// NewDispatcher wires the dispatcher. trustedFeed is the only oracle account
// Process will accept; feed is the oracle bound to that identity.
func NewDispatcher(programID, trustedFeed common.Address, eng *engine.Engine, feed engine.PriceOracle, clock util.Clock, log *zap.SugaredLogger) *Dispatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if clock == nil {
		clock = util.RealClock{}
	}
	return &Dispatcher{
		programID:   programID,
		trustedFeed: trustedFeed,
		engine:      eng,
		feed:        feed,
		clock:       clock,
		log:         log,
	}
}

// ProgramID returns the program identity records must be owned by.
func (d *Dispatcher) ProgramID() common.Address { return d.programID }

// Process runs one instruction against a record account.
//
// The account list convention follows the hosting environment: the record
// account first, the oracle feed reference second. On any error the account
// data is untouched; the caller must not persist it.
func (d *Dispatcher) Process(record *Account, feedAddr common.Address, instruction []byte) error {
	if record.Owner != d.programID {
		d.log.Warnw("rejected", "reason", "owner", "account", record.Address.Hex(), "owner", record.Owner.Hex())
		return engine.ErrUnauthorized
	}
	if feedAddr != d.trustedFeed {
		d.log.Warnw("rejected", "reason", "feed", "got", feedAddr.Hex(), "want", d.trustedFeed.Hex())
		return engine.ErrUntrustedOracle
	}

	cmd, err := engine.ParseInstruction(instruction)
	if err != nil {
		return err
	}
	rec, err := engine.DecodeRecord(record.Data)
	if err != nil {
		return err
	}

	now := uint32(d.clock.Now().Unix())
	if err := d.engine.Apply(cmd, now, rec, d.feed); err != nil {
		d.log.Infow("apply_rejected", "account", record.Address.Hex(), "cmd", cmd.String(), "code", engine.ErrorCode(err), "err", err)
		return err
	}

	copy(record.Data, rec.Encode())
	d.log.Infow("applied", "account", record.Address.Hex(), "cmd", cmd.String(), "phase", rec.Phase().String(), "score", rec.Score)
	return nil
}
