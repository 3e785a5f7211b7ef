package engine

import (
	"errors"
	"testing"
)

// stubOracle is a deterministic PriceOracle for engine tests.
type stubOracle struct {
	current    uint64
	currentOK  bool
	settlement Sample
	settleOK   bool

	// settlementAsked records the lookup target for assertion.
	settlementAsked uint32
}

func (o *stubOracle) CurrentPrice() (uint64, bool) { return o.current, o.currentOK }

func (o *stubOracle) SettlementPrice(atOrAfter uint32) (Sample, bool) {
	o.settlementAsked = atOrAfter
	return o.settlement, o.settleOK
}

func openRecord() *Record {
	return &Record{
		Score:             5,
		MaturityTimestamp: 1300,
		StrikePrice:       100,
		IsHigher:          true,
		IsBetting:         true,
	}
}

// requireUnchanged fails the test unless the record is byte-identical to the
// given snapshot — the atomicity contract for every rejected command.
func requireUnchanged(t *testing.T, rec *Record, snapshot []byte) {
	t.Helper()
	got := rec.Encode()
	for i := range snapshot {
		if got[i] != snapshot[i] {
			t.Fatalf("record mutated on error: byte %d = %#x, want %#x", i, got[i], snapshot[i])
		}
	}
}

func TestApply_OpenLong(t *testing.T) {
	e := New(nil)
	rec := &Record{}
	feed := &stubOracle{current: 100, currentOK: true}

	if err := e.Apply(OpenLong, 1000, rec, feed); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !rec.IsBetting {
		t.Error("expected betting flag set")
	}
	if !rec.IsHigher {
		t.Error("expected long direction")
	}
	if rec.StrikePrice != 100 {
		t.Errorf("strike = %d, want 100", rec.StrikePrice)
	}
	if rec.MaturityTimestamp != 1300 {
		t.Errorf("maturity = %d, want 1300", rec.MaturityTimestamp)
	}
}

func TestApply_OpenShort(t *testing.T) {
	e := New(nil)
	rec := &Record{}
	feed := &stubOracle{current: 250, currentOK: true}

	if err := e.Apply(OpenShort, 2000, rec, feed); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if rec.IsHigher {
		t.Error("expected short direction")
	}
	if rec.StrikePrice != 250 {
		t.Errorf("strike = %d, want 250", rec.StrikePrice)
	}
}

func TestApply_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		rec     *Record
		cmd     Command
		now     uint32
		feed    *stubOracle
		wantErr *Error
	}{
		{
			name:    "settle while idle",
			rec:     &Record{Score: 3},
			cmd:     Settle,
			now:     9999,
			feed:    &stubOracle{},
			wantErr: ErrNoOpenPosition,
		},
		{
			name:    "open long while open",
			rec:     openRecord(),
			cmd:     OpenLong,
			now:     1000,
			feed:    &stubOracle{current: 100, currentOK: true},
			wantErr: ErrPositionAlreadyOpen,
		},
		{
			name:    "open short while open",
			rec:     openRecord(),
			cmd:     OpenShort,
			now:     1000,
			feed:    &stubOracle{current: 100, currentOK: true},
			wantErr: ErrPositionAlreadyOpen,
		},
		{
			name:    "unknown command while idle",
			rec:     &Record{Score: 3},
			cmd:     Command(7),
			now:     1000,
			feed:    &stubOracle{current: 100, currentOK: true},
			wantErr: ErrUnknownCommand,
		},
		{
			name:    "unknown command while open",
			rec:     openRecord(),
			cmd:     Command(99),
			now:     9999,
			feed:    &stubOracle{},
			wantErr: ErrUnknownCommand,
		},
		{
			name:    "open without current price",
			rec:     &Record{},
			cmd:     OpenLong,
			now:     1000,
			feed:    &stubOracle{},
			wantErr: ErrPriceUnavailable,
		},
		{
			// Margin is additive to maturity: settleable from 1305, not 1304.
			name:    "settle before maturity margin",
			rec:     openRecord(),
			cmd:     Settle,
			now:     1304,
			feed:    &stubOracle{settlement: Sample{1310, 110}, settleOK: true},
			wantErr: ErrMaturityNotReached,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(nil)
			snapshot := tt.rec.Encode()

			err := e.Apply(tt.cmd, tt.now, tt.rec, tt.feed)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			requireUnchanged(t, tt.rec, snapshot)
		})
	}
}

func TestApply_SettleWin(t *testing.T) {
	e := New(nil)
	rec := openRecord()
	feed := &stubOracle{settlement: Sample{Timestamp: 1303, Price: 110}, settleOK: true}

	if err := e.Apply(Settle, 1310, rec, feed); err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if rec.Score != 6 {
		t.Errorf("score = %d, want 6", rec.Score)
	}
	if rec.IsBetting {
		t.Error("expected betting flag cleared")
	}
	if feed.settlementAsked != 1300 {
		t.Errorf("settlement lookup at %d, want maturity 1300", feed.settlementAsked)
	}
}

func TestApply_SettleAtExactMargin(t *testing.T) {
	e := New(nil)
	rec := openRecord()
	feed := &stubOracle{settlement: Sample{1301, 110}, settleOK: true}

	// now == maturity + margin is the first settleable second
	if err := e.Apply(Settle, 1305, rec, feed); err != nil {
		t.Fatalf("settle at exact margin failed: %v", err)
	}
	if rec.Score != 6 {
		t.Errorf("score = %d, want 6", rec.Score)
	}
}

func TestApply_SettleLoss(t *testing.T) {
	tests := []struct {
		name     string
		isHigher bool
		price    uint64
	}{
		{"long loses below strike", true, 90},
		{"short loses above strike", false, 110},
		// Ties resolve against the bettor under both directions.
		{"long loses on tie", true, 100},
		{"short loses on tie", false, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(nil)
			rec := openRecord()
			rec.IsHigher = tt.isHigher
			feed := &stubOracle{settlement: Sample{1302, tt.price}, settleOK: true}

			if err := e.Apply(Settle, 1310, rec, feed); err != nil {
				t.Fatalf("settle failed: %v", err)
			}
			if rec.Score != 4 {
				t.Errorf("score = %d, want 4", rec.Score)
			}
			if rec.IsBetting {
				t.Error("expected betting flag cleared")
			}
		})
	}
}

func TestApply_SettleMissingSampleIsLoss(t *testing.T) {
	e := New(nil)
	rec := openRecord()
	feed := &stubOracle{settleOK: false}

	if err := e.Apply(Settle, 1310, rec, feed); err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if rec.Score != 4 {
		t.Errorf("score = %d, want 4", rec.Score)
	}
	if rec.IsBetting {
		t.Error("expected betting flag cleared")
	}
}

func TestApply_ScoreFloorsAtZero(t *testing.T) {
	e := New(nil)
	rec := openRecord()
	rec.Score = 0
	feed := &stubOracle{settleOK: false}

	if err := e.Apply(Settle, 1310, rec, feed); err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if rec.Score != 0 {
		t.Errorf("score = %d, want 0 (no unsigned wrap)", rec.Score)
	}
}

func TestApply_FullCycle(t *testing.T) {
	e := New(nil)
	rec := &Record{}
	feed := &stubOracle{current: 100, currentOK: true}

	if err := e.Apply(OpenLong, 1000, rec, feed); err != nil {
		t.Fatalf("open: %v", err)
	}

	feed.settlement = Sample{Timestamp: 1300, Price: 150}
	feed.settleOK = true
	if err := e.Apply(Settle, 1306, rec, feed); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if rec.Score != 1 || rec.IsBetting {
		t.Errorf("after cycle: score=%d betting=%v, want score=1 betting=false", rec.Score, rec.IsBetting)
	}

	// Record is Idle again and can open a fresh position.
	if err := e.Apply(OpenShort, 2000, rec, feed); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if rec.MaturityTimestamp != 2300 {
		t.Errorf("maturity = %d, want 2300", rec.MaturityTimestamp)
	}
}
