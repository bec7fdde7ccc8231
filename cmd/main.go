package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather_station/internal/config"
	"weather_station/internal/display"
	"weather_station/internal/handlers"
	"weather_station/internal/logger"
	"weather_station/internal/repository"
	"weather_station/internal/repository/db"
	"weather_station/internal/sensor"
	"weather_station/internal/server"
	"weather_station/internal/service"
	"weather_station/internal/system"
)

const (
	configPathEnv = "WEATHER_CONFIG"
	goodbyePause  = 2 * time.Second
)

// @title                       Weather Station API
// @version                     1.0
// @description                 Local operator API of the weather station agent.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load(os.Getenv(configPathEnv))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
		os.Exit(1)
	}

	// init logger
	log := logger.Init(logger.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Console:    cfg.Logging.Console,
	})
	defer func() { _ = log.Sync() }()

	warnings, err := cfg.Validate()
	if err != nil {
		log.Fatalw("invalid config", "err", err)
	}
	for _, w := range warnings {
		log.Warnw("config_adjusted", "reason", w)
	}

	// open DB
	sqlDB, err := openDB(cfg.DB.Path, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	if cfg.State.Backend == config.StateBackendFile {
		repos.State = repository.NewStateFile(cfg.State.Path)
	}

	uploaders, err := buildUploaders(cfg, log)
	if err != nil {
		log.Fatalw("failed to build uploaders", "err", err)
	}

	var failureLog repository.FailureLog
	if cfg.Failure.CSV {
		fl, err := repository.NewCSVFailureLog(cfg.Failure.Dir, cfg.Failure.MaxFiles)
		if err != nil {
			log.Warnw("failure records disabled", "dir", cfg.Failure.Dir, "err", err)
		} else {
			failureLog = fl
		}
	}

	sampler := service.NewSampler(service.SamplerConfig{
		AirSensorID:        cfg.Thermometers.AirID,
		SecondarySensorID:  cfg.Thermometers.SecondaryID,
		UseAirSensor:       cfg.Thermometers.UseAir,
		OnboardFallback:    cfg.Thermometers.OnboardFallback,
		CompensationFactor: cfg.Onboard.CompensationFactor,
		SI:                 cfg.Display.SI,
	},
		sensor.NewThermometerReader(cfg.Thermometers.DevicesDir),
		sensor.NewOnboard(cfg.Onboard.HumidityDevice, cfg.Onboard.PressureDevice, cfg.Onboard.CPUThermalPath),
		log,
	)

	board := service.NewStatusBoard()
	engine := service.NewEngine(service.EngineConfig{
		DisplayIntervalMin: cfg.Display.IntervalMinutes,
		Sunrise:            cfg.Display.Sunrise,
		Sunset:             cfg.Display.Sunset,
		GoodbyePause:       goodbyePause,
	}, cfg.Runtime(), service.EngineDeps{
		Sampler:    sampler,
		Uploaders:  uploaders,
		Store:      repos.State,
		Events:     repos.Events,
		FailureLog: failureLog,
		Failures:   service.NewFailurePolicy(cfg.Failure.Max, cfg.Failure.Reboot, cfg.Failure.CSV),
		Status:     board,
		Display:    display.NewLogging(log),
		Power:      system.NewExecPower(cfg.Power.DryRun, log),
		Clock:      service.SystemClock(),
		Log:        log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpCtx, stopHTTP := context.WithCancel(ctx)
	httpDone := make(chan struct{})
	if cfg.HTTP.Enabled {
		services := service.NewService(repos, board, engine, cfg.Runtime(), service.AuthConfig{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		})
		srv := server.New(cfg.HTTP.Port, handlers.NewHandler(services, log).InitRoutes(), cfg.HTTP.ShutdownTimeout)
		go func() {
			defer close(httpDone)
			log.Infow("http server listening", "addr", srv.Addr())
			if err := srv.Run(httpCtx); err != nil {
				log.Errorw("http server stopped", "err", err)
			}
		}()
	} else {
		close(httpDone)
	}

	log.Infow("station starting", "station_id", cfg.Station.ID, "state_backend", cfg.State.Backend)
	engine.Run(ctx)

	// Run also returns after a stop directive
	stopHTTP()
	<-httpDone
	log.Infow("station stopped")
}

// openDB initializes the SQLite database using configuration.
func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "weather_station.db")
		path = "weather_station.db"
	}
	return db.InitDB(path)
}

// buildUploaders creates the primary and secondary uploaders, each behind a
// minimum-spacing limiter.
func buildUploaders(cfg *config.Config, log *logger.Logger) ([]service.Uploader, error) {
	primary, err := service.NewPrimaryUploader(service.PrimaryOptions{
		URL:       cfg.Primary.URL,
		StationID: cfg.Station.ID,
		Timezone:  cfg.Station.Timezone,
		SI:        cfg.Display.SI,
		Timeout:   cfg.Primary.Timeout,
	})
	if err != nil {
		return nil, err
	}

	secondary, err := service.NewSecondaryUploader(service.SecondaryOptions{
		URL:        cfg.Secondary.URL,
		StationID:  cfg.Secondary.StationID,
		StationKey: cfg.Secondary.StationKey,
		Timeout:    cfg.Secondary.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}

	return []service.Uploader{
		service.NewRateLimited(primary, cfg.Primary.MinSpacing),
		service.NewRateLimited(secondary, cfg.Secondary.MinSpacing),
	}, nil
}
