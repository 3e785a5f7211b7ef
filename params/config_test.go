package params

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "updown.toml")
	toml := `
[engine]
bet_duration = 600

[node]
api_listen = ":9090"
`
	if err := os.WriteFile(path, []byte(toml), 0644); err != nil {
		t.Fatal(err)
	}

	// ENV beats the file; the file beats defaults.
	t.Setenv("UPDOWN_BET_DURATION", "120")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.BetDuration != 120 {
		t.Errorf("bet_duration = %d, want env override 120", cfg.Engine.BetDuration)
	}
	if cfg.Node.APIListen != ":9090" {
		t.Errorf("api_listen = %q, want file value :9090", cfg.Node.APIListen)
	}
	if cfg.Engine.MaturityMargin != 5 {
		t.Errorf("maturity_margin = %d, want default 5", cfg.Engine.MaturityMargin)
	}
}

func TestValidateRejectsBadAddresses(t *testing.T) {
	cfg := Default()
	cfg.Oracle.FeedAddress = "not-an-address"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for bad feed address")
	}

	cfg = Default()
	cfg.Node.ProgramAddress = "0x123"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for bad program address")
	}
}
