package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cxd309/motion-profiler/internal/config"
	"github.com/cxd309/motion-profiler/internal/emit"
	"github.com/cxd309/motion-profiler/internal/engine"
	"github.com/cxd309/motion-profiler/internal/kinematics"
	"github.com/cxd309/motion-profiler/internal/samples"
	"github.com/cxd309/motion-profiler/internal/server"
)

// options holds values shared by every command.
type options struct {
	configPath string
	samples    string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "profiler",
		Short:         "Generate trapezoidal motion profiles from captured actuator runs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("samples") {
				cfg.SamplesFile = opts.samples
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = opts.logLevel
			}
			opts.cfg = cfg
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVarP(&opts.samples, "samples", "s", "", "capture CSV file (output, pos, rate, time)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newGenerateCmd(opts), newSynthCmd(opts), newServeCmd(opts))
	return root
}

// loadStore reads the configured sample file, or in when none is configured.
func (o *options) loadStore(in io.Reader) (*samples.Store, error) {
	if o.cfg.SamplesFile == "" {
		s, err := samples.Load(in)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return s, nil
	}
	return samples.LoadFile(o.cfg.SamplesFile)
}

func newGenerateCmd(opts *options) *cobra.Command {
	var (
		distances []float64
		format    string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate profiles for one or more distances and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := &opts.cfg
			if cmd.Flags().Changed("distance") {
				cfg.Distances = distances
			}
			if cmd.Flags().Changed("format") {
				cfg.Output.Format = format
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			f, err := emit.ParseFormat(cfg.Output.Format)
			if err != nil {
				return err
			}

			store, err := opts.loadStore(cmd.InOrStdin())
			if err != nil {
				return err
			}
			opts.logger.Debug("samples loaded", "forward", len(store.Forward()), "reverse", len(store.Reverse()))

			eng, err := engine.New(store, opts.logger, engine.WithMaxStates(cfg.Limits.MaxStates))
			if err != nil {
				return err
			}
			logs, err := eng.RunAll(cmd.Context(), cfg.Distances)
			if err != nil {
				return err
			}
			profiles := make([]emit.Profile, len(logs))
			for i, l := range logs {
				profiles[i] = emit.Profile{Distance: l.Distance, States: l.States}
			}
			return emit.Write(cmd.OutOrStdout(), f, profiles)
		},
	}
	cmd.Flags().Float64SliceVarP(&distances, "distance", "d", nil, "target distance (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: csv or json")
	return cmd
}

func newSynthCmd(opts *options) *cobra.Command {
	var s config.SynthConfig
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write a synthetic capture of a constant-acceleration actuator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := &opts.cfg
			flags := cmd.Flags()
			if flags.Changed("a-acc") {
				cfg.Synth.AAcc = s.AAcc
			}
			if flags.Changed("a-dcc") {
				cfg.Synth.ADcc = s.ADcc
			}
			if flags.Changed("v-max") {
				cfg.Synth.VMax = s.VMax
			}
			if flags.Changed("dt") {
				cfg.Synth.TimeStep = s.TimeStep
			}
			if flags.Changed("cruise") {
				cfg.Synth.CruiseSamples = s.CruiseSamples
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			recs, err := kinematics.Capture(cfg.Synth.Model(), cfg.Synth.CaptureConfig())
			if err != nil {
				return fmt.Errorf("synthesizing capture: %w", err)
			}
			m := cfg.Synth.Model()
			opts.logger.Debug("capture synthesized",
				"records", len(recs),
				"braking_distance", m.BrakingDistance(m.VMax()),
			)
			return emit.Write(cmd.OutOrStdout(), emit.FormatCSV, []emit.Profile{{States: recs}})
		},
	}
	cmd.Flags().Float64Var(&s.AAcc, "a-acc", 0, "acceleration")
	cmd.Flags().Float64Var(&s.ADcc, "a-dcc", 0, "braking deceleration (positive)")
	cmd.Flags().Float64Var(&s.VMax, "v-max", 0, "saturation speed")
	cmd.Flags().Float64Var(&s.TimeStep, "dt", 0, "sample interval, seconds")
	cmd.Flags().IntVar(&s.CruiseSamples, "cruise", 0, "samples held at saturation speed")
	return cmd
}

func newServeCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve profile generation over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := &opts.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			var eng *engine.Engine
			if cfg.SamplesFile != "" {
				store, err := samples.LoadFile(cfg.SamplesFile)
				if err != nil {
					return err
				}
				if eng, err = engine.New(store, opts.logger, engine.WithMaxStates(cfg.Limits.MaxStates)); err != nil {
					return fmt.Errorf("%s: %w", cfg.SamplesFile, err)
				}
			}

			handler := server.New(server.Config{
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
				MaxStates:    cfg.Limits.MaxStates,
			}, eng, opts.logger).Handler()
			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, srv, opts.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address")
	return cmd
}

// serve runs srv until ctx is done, then shuts it down.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
