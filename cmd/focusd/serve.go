package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/danmuck/focusctl/internal/config"
	"github.com/danmuck/focusctl/internal/focus"
	"github.com/danmuck/focusctl/internal/focus/dispatch"
	"github.com/danmuck/focusctl/internal/logging"
	"github.com/danmuck/focusctl/internal/observability"
	"github.com/danmuck/focusctl/internal/plugins"
	"github.com/danmuck/focusctl/internal/transport"
	"github.com/danmuck/focusctl/internal/transport/serialport"
)

const dropReportInterval = time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Open the serial port and answer focus commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			logging.ConfigureRuntime()
			log := logging.For("focusd").With().
				Str("instance", uuid.NewString()).
				Str("device", cfg.DeviceName).
				Logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	port, err := serialport.Open(cfg.Serial(), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := port.Close(); err != nil {
			log.Warn().Err(err).Msg("serial close failed")
		}
	}()

	rec := observability.NewRecorder(cfg.DeviceName)
	d, err := newDevice(cfg, port, focus.SleepPacer{}, rec, log)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		srv := startMetrics(cfg.MetricsAddr, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}
	go reportDropped(ctx, port, rec, dropReportInterval)

	log.Info().Str("port", cfg.Port).Dur("tick", cfg.Tick).Msg("focusd serving")
	err = d.Run(ctx, cfg.Tick)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("focusd stopped")
		return nil
	}
	if perr := port.Err(); perr != nil {
		log.Error().Err(perr).Msg("serial reader stopped")
	}
	return err
}

// newDevice assembles the engine, the dispatcher and the built-in plugins on
// top of port.
func newDevice(cfg config.Config, port transport.Port, pacer focus.Pacer, rec *observability.Recorder, log zerolog.Logger) (*dispatch.Dispatcher, error) {
	ecfg := cfg.Engine()
	ecfg.Pacer = pacer
	ecfg.Metrics = rec
	ecfg.Logger = &log
	engine, err := focus.New(port, ecfg)
	if err != nil {
		return nil, err
	}

	set, err := plugins.Builtin(plugins.Options{
		LEDCount:       cfg.LEDCount,
		LEDModes:       uint8(cfg.LEDModes),
		KeymapLayers:   cfg.KeymapLayers,
		KeymapKeys:     cfg.KeymapKeys,
		KeymapDefaults: cfg.KeymapDefaults,
	})
	if err != nil {
		return nil, err
	}

	d, err := dispatch.New(engine, dispatch.Config{
		Resetter: set,
		Metrics:  rec,
		Logger:   &log,
	})
	if err != nil {
		return nil, err
	}
	if err := d.Register(set.Dispatch()...); err != nil {
		return nil, err
	}
	return d, nil
}

func startMetrics(addr string, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("metrics listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}

type dropCounter interface {
	Dropped() uint64
}

func reportDropped(ctx context.Context, src dropCounter, rec *observability.Recorder, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rec.RxDropped(src.Dropped())
		}
	}
}
