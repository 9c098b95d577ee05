package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/spf13/cobra"

	"github.com/ytget/yt-monitor/internal/config"
	"github.com/ytget/yt-monitor/internal/dispatch"
	"github.com/ytget/yt-monitor/internal/events"
	"github.com/ytget/yt-monitor/internal/ledger"
	"github.com/ytget/yt-monitor/internal/listener"
	"github.com/ytget/yt-monitor/internal/logger"
	"github.com/ytget/yt-monitor/internal/model"
	"github.com/ytget/yt-monitor/internal/platform"
	"github.com/ytget/yt-monitor/internal/probe"
	"github.com/ytget/yt-monitor/internal/supervisor"
)

// shutdownGrace is how long listeners get to finish in-flight work after the
// stop signal before their downloads are cancelled outright.
const shutdownGrace = 30 * time.Second

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the monitoring daemon",
		Long: `Starts one listener per enabled account and keeps polling until
interrupted. The config file is watched; edits are applied without a restart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context())
		},
	}
}

func runDaemon(parent context.Context) error {
	log, err := logger.New(logLevel)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Fetch yt-dlp if it is not already available. Failure is not fatal: a
	// system-wide binary on PATH still works.
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		log.Warn("yt-dlp install check failed, relying on PATH", "error", err)
	}

	if err := platform.CreateDirectoryIfNotExists(cfg.DownloadDir); err != nil {
		return fmt.Errorf("ensure download dir: %w", err)
	}

	store, err := ledger.NewSQLite(cfg.LedgerPath)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()

	prober := probe.New()
	prober.SetTimeout(cfg.ProbeTimeout())

	dispatcher := dispatch.New(dispatch.QualityPreset(cfg.Quality))
	dispatcher.SetTimeout(cfg.DispatchTimeout())

	bus := events.NewBus()
	defer bus.Close()
	go logEvents(ctx, bus, log)

	sup := supervisor.New(listener.Deps{
		Prober:     prober,
		Dispatcher: dispatcher,
		Ledger:     store,
		Bus:        bus,
		Logger:     log,
	}, listener.Options{
		BackoffBase: cfg.BackoffBase(),
		BackoffMax:  cfg.BackoffMax(),
	})

	accounts, accErrs := cfg.ToAccounts()
	for _, err := range accErrs {
		log.Warn("skipping account", "error", err)
	}
	for _, account := range accounts {
		if err := sup.AddAccount(account); err != nil {
			log.Warn("skipping account", "id", account.ID, "error", err)
		}
	}

	sup.StartAll()
	log.Info("monitoring started", "accounts", len(accounts), "config", cfgFile)

	go watchConfig(ctx, sup, log)

	<-ctx.Done()
	log.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	sup.StopAll(stopCtx)
	log.Info("all listeners stopped")
	return nil
}

// watchConfig reloads the config file on change and reconciles the account
// set against it. Global settings require a restart; only accounts are live.
func watchConfig(ctx context.Context, sup *supervisor.Supervisor, log logger.Interface) {
	err := config.Watch(ctx, cfgFile, log, func(cfg *config.Config) {
		accounts, accErrs := cfg.ToAccounts()
		for _, err := range accErrs {
			log.Warn("skipping account", "error", err)
		}
		for _, err := range sup.Sync(ctx, accounts) {
			log.Warn("config sync", "error", err)
		}
		log.Info("config reloaded", "accounts", len(accounts))
	})
	if err != nil && ctx.Err() == nil {
		log.Error("config watcher stopped", "error", err)
	}
}

// logEvents mirrors the event stream into the log until ctx is done
func logEvents(ctx context.Context, bus *events.Bus, log logger.Interface) {
	ch, cancel := bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			logEvent(log, ev)
		}
	}
}

func logEvent(log logger.Interface, ev model.Event) {
	switch ev.Type {
	case model.EventNewItemFound:
		log.Info("new item", "account", ev.AccountID, "item", ev.Item.ID, "title", ev.Item.Title)
	case model.EventDispatchSucceeded:
		log.Info("download complete", "account", ev.AccountID, "item", ev.Item.ID)
	case model.EventDispatchFailed:
		log.Warn("download failed", "account", ev.AccountID, "item", ev.Item.ID, "error", ev.Err)
	case model.EventAccountBackoff:
		log.Warn("account backing off", "account", ev.AccountID, "error", ev.Err)
	default:
		log.Debug("event", "type", ev.Type, "account", ev.AccountID)
	}
}
