package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/coolctl/internal/config"
	"codeberg.org/mutker/coolctl/internal/controller"
	"codeberg.org/mutker/coolctl/internal/device"
	"codeberg.org/mutker/coolctl/internal/errors"
	"codeberg.org/mutker/coolctl/internal/logger"
	"codeberg.org/mutker/coolctl/internal/metrics"
	"codeberg.org/mutker/coolctl/internal/pid"
	"codeberg.org/mutker/coolctl/internal/profile"
	"codeberg.org/mutker/coolctl/internal/sensors"
	"codeberg.org/mutker/coolctl/internal/telemetry"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code. Cancelling ctx
// is a normal stop, not a failure.
func run(ctx context.Context, args []string) int {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "coolctl: %v\n\n%s", err, config.Usage())
		return exitUsage
	}

	if cfg.ShowHelp {
		fmt.Print(config.Usage())
		return exitOK
	}
	if cfg.ShowVersion {
		fmt.Printf("coolctl %s\n", version)
		return exitOK
	}

	level, err := logger.ParseLevel(cfg.EffectiveLogLevel().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "coolctl: %v\n", err)
		return exitUsage
	}
	log := logger.New(level, logger.IsService())
	if cfg.ConfigFile != "" {
		log.Debug().Str("path", cfg.ConfigFile).Msg("Config loaded")
	}

	switch cfg.Command {
	case config.CommandShowSensors:
		err = showSensors(ctx, cfg, log)
	case config.CommandControl:
		err = control(ctx, cfg, log)
	}

	if err == nil {
		return exitOK
	}

	if profile.IsValidationError(err) {
		fmt.Fprintf(os.Stderr, "coolctl: %v\n", err)
		return exitUsage
	}

	if ctx.Err() != nil {
		log.Info().Err(err).Msg("Cancelled")
		return exitOK
	}

	var appErr errors.Error
	if errors.As(err, &appErr) {
		log.ErrorWithCode(appErr).Msg("Exiting")
	} else {
		log.Error().Err(err).Msg("Exiting")
	}

	return exitFailure
}

func showSensors(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	var status sensors.StatusReader

	dev, err := device.Find(ctx, device.NewExecRunner(cfg.Liquidctl), cfg.Device, log)
	if err != nil {
		log.Warn().Err(err).Msg("No supported device, listing host sensors only")
	} else {
		if err := dev.Connect(ctx); err != nil {
			return err
		}
		defer func() {
			if err := dev.Disconnect(); err != nil {
				log.Error().Err(err).Msg("Failed to disconnect device")
			}
		}()
		status = dev
	}

	sources := sensors.PlatformSources(log)
	defer sensors.CloseAll(sources, log)

	reading, err := sensors.NewAggregator(status, sources, log).Read(ctx)
	if err != nil {
		return err
	}

	fmt.Print(renderSensors(reading.Samples()))

	return nil
}

func control(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	pumpProfile, err := profile.Parse(cfg.Pump, profileBounds(cfg, cfg.PumpMinDuty))
	if err != nil {
		return err
	}
	fanProfile, err := profile.Parse(cfg.Fan, profileBounds(cfg, cfg.FanMinDuty))
	if err != nil {
		return err
	}

	pidFile := pid.New(cfg.PIDFile)
	if err := pidFile.Write(); err != nil {
		return err
	}
	defer func() {
		if err := pidFile.Remove(); err != nil {
			log.Warn().Err(err).Str("path", pidFile.Path()).Msg("Failed to remove PID file")
		}
	}()

	dev, err := device.Find(ctx, device.NewExecRunner(cfg.Liquidctl), cfg.Device, log)
	if err != nil {
		return err
	}

	sources := sensors.PlatformSources(log)
	defer sensors.CloseAll(sources, log)

	observers, closeObservers, err := newObservers(cfg, log)
	if err != nil {
		return err
	}
	defer closeObservers()

	ctrl, err := controller.New(controller.Config{
		PumpProfile: pumpProfile,
		FanProfile:  fanProfile,
		PumpSensor:  cfg.PumpSensor,
		FanSensor:   cfg.FanSensor,
		Interval:    cfg.IntervalDuration(),
	}, dev, sensors.NewAggregator(dev, sources, log), log.With("device", dev.Description()), observers...)
	if err != nil {
		return err
	}

	return ctrl.Run(ctx)
}

func profileBounds(cfg *config.Config, minDuty int) profile.Bounds {
	return profile.Bounds{
		MinTemp: 0,
		MaxTemp: cfg.MaxTemperature,
		MinDuty: minDuty,
		MaxDuty: cfg.MaxDuty,
	}
}

// newObservers builds the metrics and telemetry observers. The returned
// function closes whichever were created.
func newObservers(cfg *config.Config, log logger.Logger) ([]controller.Observer, func(), error) {
	collector, err := metrics.NewService(metrics.Config{
		Enabled:      cfg.Metrics.Enabled,
		DBPath:       cfg.Metrics.DBPath,
		BatchSize:    cfg.Metrics.BatchSize,
		BatchTimeout: cfg.Metrics.BatchTimeout,
	}, log.With("component", "metrics"))
	if err != nil {
		return nil, nil, err
	}

	publisher, err := telemetry.NewPublisher(telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Broker:   cfg.Telemetry.Broker,
		Topic:    cfg.Telemetry.Topic,
		ClientID: cfg.Telemetry.ClientID,
	}, log.With("component", "telemetry"))
	if err != nil {
		if cerr := collector.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to close metrics collector")
		}
		return nil, nil, err
	}

	closeAll := func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close telemetry publisher")
		}
		if err := collector.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close metrics collector")
		}
	}

	return []controller.Observer{collector, publisher}, closeAll, nil
}
