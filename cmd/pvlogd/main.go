package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aurora-pvlogd/internal/bus"
	"aurora-pvlogd/internal/clock"
	"aurora-pvlogd/internal/config"
	"aurora-pvlogd/internal/errors"
	"aurora-pvlogd/internal/history"
	"aurora-pvlogd/internal/inverter"
	"aurora-pvlogd/internal/logger"
	"aurora-pvlogd/internal/pid"
	"aurora-pvlogd/internal/pvoutput"
	"aurora-pvlogd/internal/retry"
	"aurora-pvlogd/internal/sched"
	"aurora-pvlogd/internal/statusapi"
	"aurora-pvlogd/internal/telemetry"
)

const (
	loopResolution   = time.Second
	busRetryInterval = 60 * time.Second
	reportBackoff    = time.Second
	shutdownTimeout  = 5 * time.Second
)

type app struct {
	cfg       *config.Config
	clk       *clock.NTPClock
	cache     *telemetry.Cache
	link      inverter.Link
	collector *inverter.Collector
	publisher *bus.Publisher
	reporter  *pvoutput.Client
	recorder  history.Recorder

	statusSrv *statusapi.Server

	statsTrigger  *sched.Trigger
	reportTrigger *sched.Trigger
	pending       sched.PendingReport
	online        func() bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Msg("Config loaded")

	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer pid.Remove()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	a, err := initApp(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize")
	}

	a.run(ctx)
	a.shutdown()
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func initApp(ctx context.Context, cfg *config.Config) (*app, error) {
	clk := clock.NewNTP(cfg.NTPServer, int64(cfg.ClockOffset))
	if err := clk.Sync(ctx); err != nil {
		return nil, err
	}

	link, err := inverter.OpenAurora(inverter.AuroraConfig{
		Port:    cfg.SerialPort,
		Baud:    cfg.SerialBaud,
		Address: byte(cfg.InverterAddress),
	})
	if err != nil {
		return nil, err
	}

	cache := telemetry.NewCache()

	hostname, _ := os.Hostname()
	publisher, err := bus.NewPublisher(bus.Config{
		Host:      cfg.BrokerHost,
		Port:      cfg.BrokerPort,
		User:      cfg.BrokerUser,
		Password:  cfg.BrokerPassword,
		TopicRoot: cfg.TopicRoot,
		ClientID:  fmt.Sprintf("%s-%s", cfg.TopicRoot, hostname),
	}, retry.Unbounded(busRetryInterval))
	if err != nil {
		return nil, err
	}

	reporter, err := pvoutput.NewClient(pvoutput.Config{
		URL:      cfg.ReportURL,
		APIKey:   cfg.ReportAPIKey,
		SystemID: cfg.ReportSystemID,
	}, clk)
	if err != nil {
		return nil, err
	}

	recorder, err := history.NewRecorder(history.Config{
		Enabled: cfg.History,
		DBPath:  cfg.HistoryDB,
	})
	if err != nil {
		return nil, err
	}

	statusSrv := statusapi.New(cfg.ListenAddr, cache)
	statusSrv.Start()

	// Initial broker connection, same blocking recovery path the publish
	// cycle uses later.
	if err := publisher.EnsureConnected(ctx); err != nil {
		logger.Warn().Err(err).Msg("Broker not reachable at startup")
	}

	now := clk.Now()

	return &app{
		cfg:           cfg,
		clk:           clk,
		cache:         cache,
		link:          link,
		collector:     inverter.NewCollector(link, clk, cache),
		publisher:     publisher,
		reporter:      reporter,
		recorder:      recorder,
		statusSrv:     statusSrv,
		statsTrigger:  sched.NewTrigger(int64(cfg.StatsPeriod), now),
		reportTrigger: sched.NewTrigger(int64(cfg.ReportPeriod), now),
		online:        pvoutput.Online,
	}, nil
}

// run is the cooperative main loop. Every blocking call completes before
// the next scheduling decision; no error is allowed to escape an iteration.
func (a *app) run(ctx context.Context) {
	logger.Info().
		Int64("stats_fire", a.statsTrigger.NextFire()).
		Int64("report_fire", a.reportTrigger.NextFire()).
		Msg("Scheduler started")

	ticker := time.NewTicker(loopResolution)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.clk.Update()
			now := a.clk.Now()

			// The report cycle runs before the stats cycle when both are
			// due, so a fresh confirmed reading is never shadowed by a
			// stats batch from the same tick.
			if a.reportTrigger.Due(now) {
				a.runReportCycle()
			}
			if a.statsTrigger.Due(now) {
				a.runStatsCycle(ctx)
			}
			a.deliverPendingReport(ctx)
		}
	}
}

// runReportCycle sets the device time and reads the daily-energy counter.
// A successful read arms the pending flag for remote delivery.
func (a *app) runReportCycle() {
	a.collector.SetDeviceTime()

	energy, readAt, err := a.collector.ReadDailyEnergy()
	if err != nil {
		logger.Warn().
			Str("error_code", string(errors.CodeOf(err))).
			Err(err).
			Msg("Cumulative energy read failed")
	} else {
		a.pending.Set(energy, readAt)
		a.publisher.Logf("updated today's energy: %d (%d) = %d",
			readAt, a.clk.ToLocal(readAt), energy)
	}

	logger.Info().
		Int64("next_fire", a.reportTrigger.NextFire()).
		Msg("Cumulative energy cycle complete")
}

// runStatsCycle refreshes the full snapshot and forwards it to the broker,
// best-effort.
func (a *app) runStatsCycle(ctx context.Context) {
	snap, updated := a.collector.ReadFullStatus()
	if !updated {
		return
	}

	if err := a.recorder.Record(ctx, &snap); err != nil {
		logger.Warn().Err(err).Msg("Failed to record snapshot")
	}

	if err := a.publisher.EnsureConnected(ctx); err != nil {
		logger.Warn().Err(err).Msg("Broker unavailable, dropping status publish")
		return
	}

	if !math.IsNaN(snap.PIn) {
		a.publisher.PublishPower(telemetry.FormatValue(snap.PIn))
	}
	a.publisher.PublishStatus(a.cache.Serialize())
}

// deliverPendingReport makes at most one remote delivery attempt per
// iteration while a confirmed reading is pending and the network is up.
// Failures leave the flag set; a brief pause avoids hammering the endpoint
// within a single period.
func (a *app) deliverPendingReport(ctx context.Context) {
	cycle, energy, readAt, ok := a.pending.Get()
	if !ok || !a.online() {
		return
	}

	if err := a.reporter.Send(ctx, energy, readAt); err != nil {
		logger.Warn().
			Str("error_code", string(errors.CodeOf(err))).
			Err(err).
			Msg("Report delivery failed, will retry")
		a.publisher.Logf("report delivery failed: %v", err)
		time.Sleep(reportBackoff)
		return
	}

	sentAt := a.clk.Now()
	if a.pending.Clear(cycle) {
		a.cache.SetLastSent(sentAt)
	}
	a.publisher.Logf("report delivered: %d at %d", energy, sentAt)
}

func (a *app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.statusSrv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to stop status endpoint")
	}
	if err := a.recorder.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close snapshot history")
	}
	if err := a.link.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close inverter link")
	}
	a.publisher.Disconnect()
	logger.Info().Msg("Exiting...")
}
