package params

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

// Engine holds the settlement timing parameters, in seconds.
type Engine struct {
	BetDuration    uint32 `toml:"bet_duration"`    // open → maturity offset
	MaturityMargin uint32 `toml:"maturity_margin"` // grace added to maturity
}

// Oracle identifies and sources the trusted price feed.
type Oracle struct {
	// FeedAddress is the only oracle account the dispatcher accepts.
	FeedAddress string `toml:"feed_address"`
	StreamURL   string `toml:"stream_url"`
	HistoryCap  int    `toml:"history_cap"`
}

// Node holds the node-local settings.
type Node struct {
	ProgramAddress string `toml:"program_address"`
	DataDir        string `toml:"data_dir"`
	APIListen      string `toml:"api_listen"`
	LogFile        string `toml:"log_file"`
}

type Config struct {
	Engine Engine `toml:"engine"`
	Oracle Oracle `toml:"oracle"`
	Node   Node   `toml:"node"`
}

func Default() Config {
	return Config{
		Engine: Engine{
			BetDuration:    300, // maturity 5 minutes after open
			MaturityMargin: 5,
		},
		Oracle: Oracle{
			FeedAddress: "0xF3A4c0De0000000000000000000000000000F33d",
			StreamURL:   "wss://stream.binance.com:9443/ws/solusdt@aggTrade",
			HistoryCap:  0, // 0 = oracle package default
		},
		Node: Node{
			ProgramAddress: "0x0000000000000000000000000000000000550bdd",
			DataDir:        "data/records.db",
			APIListen:      ":8080",
			LogFile:        "data/updownd.log",
		},
	}
}

// Load builds the configuration with priority ENV > TOML file > defaults.
// tomlPath may be empty (skip the file). A .env file in the working
// directory is loaded first if present.
func Load(tomlPath string) (Config, error) {
	cfg := Default()

	_ = godotenv.Load()

	if tomlPath != "" {
		if _, err := toml.DecodeFile(tomlPath, &cfg); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", tomlPath, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, cfg.Validate()
}

func applyEnvOverrides(cfg *Config) {
	setU32(&cfg.Engine.BetDuration, "UPDOWN_BET_DURATION")
	setU32(&cfg.Engine.MaturityMargin, "UPDOWN_MATURITY_MARGIN")

	setStr(&cfg.Oracle.FeedAddress, "UPDOWN_FEED_ADDRESS")
	setStr(&cfg.Oracle.StreamURL, "UPDOWN_STREAM_URL")
	setInt(&cfg.Oracle.HistoryCap, "UPDOWN_HISTORY_CAP")

	setStr(&cfg.Node.ProgramAddress, "UPDOWN_PROGRAM_ADDRESS")
	setStr(&cfg.Node.DataDir, "UPDOWN_DATA_DIR")
	setStr(&cfg.Node.APIListen, "UPDOWN_API_LISTEN")
	setStr(&cfg.Node.LogFile, "UPDOWN_LOG_FILE")
}

// Validate rejects configurations the node cannot safely run with.
func (c Config) Validate() error {
	if !common.IsHexAddress(c.Oracle.FeedAddress) {
		return fmt.Errorf("oracle.feed_address %q is not a hex address", c.Oracle.FeedAddress)
	}
	if !common.IsHexAddress(c.Node.ProgramAddress) {
		return fmt.Errorf("node.program_address %q is not a hex address", c.Node.ProgramAddress)
	}
	if c.Engine.BetDuration == 0 {
		return fmt.Errorf("engine.bet_duration must be positive")
	}
	return nil
}

// FeedAddress returns the parsed trusted feed address.
func (c Config) FeedAddress() common.Address {
	return common.HexToAddress(c.Oracle.FeedAddress)
}

// ProgramAddress returns the parsed program identity.
func (c Config) ProgramAddress() common.Address {
	return common.HexToAddress(c.Node.ProgramAddress)
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setU32(dst *uint32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			*dst = uint32(n)
		}
	}
}
