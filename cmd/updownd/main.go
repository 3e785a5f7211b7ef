package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tkhs-dev/updown/params"
	"github.com/tkhs-dev/updown/pkg/api"
	"github.com/tkhs-dev/updown/pkg/app/option"
	"github.com/tkhs-dev/updown/pkg/engine"
	"github.com/tkhs-dev/updown/pkg/oracle"
	"github.com/tkhs-dev/updown/pkg/storage"
	"github.com/tkhs-dev/updown/pkg/util"
)

func main() {
	// Config priority: ENV > TOML file (UPDOWN_CONFIG) > defaults
	cfg, err := params.Load(os.Getenv("UPDOWN_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := util.NewLoggerWithFile(cfg.Node.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.Node.LogFile)

	// ---- Storage ----
	store, err := storage.NewRecordStore(cfg.Node.DataDir)
	if err != nil {
		sugar.Fatalw("record_store_open_failed", "path", cfg.Node.DataDir, "err", err)
	}
	defer store.Close()

	// ---- Oracle feed ----
	history := oracle.NewHistory(cfg.Oracle.HistoryCap)
	streamer := oracle.NewStreamer(cfg.Oracle.StreamURL, history, sugar)

	// ---- Engine + app ----
	eng := engine.New(sugar)
	eng.BetDuration = cfg.Engine.BetDuration
	eng.MaturityMargin = cfg.Engine.MaturityMargin

	app := option.NewApp(
		cfg.ProgramAddress(),
		cfg.FeedAddress(),
		eng,
		history,
		store,
		util.RealClock{},
		sugar,
	)

	sugar.Infow("node_configured",
		"program", cfg.Node.ProgramAddress,
		"feed", cfg.Oracle.FeedAddress,
		"bet_duration_s", cfg.Engine.BetDuration,
		"maturity_margin_s", cfg.Engine.MaturityMargin,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- API ----
	server := api.NewServer(app)
	streamer.OnTick = server.BroadcastTick
	go streamer.Run(ctx)
	go func() {
		if err := server.Start(cfg.Node.APIListen); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("shutting down")
}
