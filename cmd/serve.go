package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/orderlink/internal/adapters/debughttp"
	"github.com/bnema/orderlink/internal/adapters/metrics/prom"
	"github.com/bnema/orderlink/internal/adapters/transport/uart"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(app *app) *cobra.Command {
	var (
		portPath  string
		debugAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve orders from a BLE co-processor on a serial line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := app.loadProfile()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				profile.UART.Path = portPath
			}
			if cmd.Flags().Changed("debug-addr") {
				profile.DebugAddr = debugAddr
			}
			if profile.UART.Path == "" {
				return fmt.Errorf("serve: no serial port configured (set uart.path or --port)")
			}

			logger, err := app.newLogger(profile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			promRegistry := prometheus.NewRegistry()
			promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics, err := prom.New(promRegistry)
			if err != nil {
				return fmt.Errorf("wire metrics: %w", err)
			}

			port, err := app.openPort(profile.UART.Path, uart.PortOptions{
				BaudRate: profile.UART.BaudRate,
				DataBits: profile.UART.DataBits,
				StopBits: profile.UART.StopBits,
				Parity:   profile.UART.Parity,
			})
			if err != nil {
				return err
			}

			bridge := uart.NewBridge(port, logger.With().Str("module", "uart").Logger())
			defer func() {
				if err := bridge.Close(); err != nil {
					logger.Warn().Err(err).Msg("close serial bridge")
				}
			}()

			stack, err := wirePeripheral(profile, bridge, metrics, logger)
			if err != nil {
				return err
			}
			defer stack.registry.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info().
				Str("peripheral", profile.Peripheral.Name).
				Str("service", profile.Peripheral.Service.String()).
				Str("port", profile.UART.Path).
				Str("framing", string(profile.Framing.Mode)).
				Msg("serving orders")

			group, groupCtx := errgroup.WithContext(ctx)
			group.Go(func() error {
				err := bridge.Run(groupCtx, stack.peripheral)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				if err == nil {
					logger.Info().Msg("serial bridge closed by peer")
					stop()
				}
				return err
			})
			if profile.DebugAddr != "" {
				mux := http.NewServeMux()
				debughttp.AttachRoutes(mux, stack.registry, promRegistry)
				group.Go(func() error {
					return debughttp.Serve(groupCtx, profile.DebugAddr, mux, logger.With().Str("module", "debughttp").Logger())
				})
			}

			if err := group.Wait(); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			logger.Info().Int("orders", len(stack.registry.Records())).Msg("stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&portPath, "port", "", "Serial device of the BLE co-processor (overrides uart.path)")
	cmd.Flags().StringVar(&debugAddr, "debug-addr", "", "Listen address for the debug HTTP server (overrides debug.addr)")

	return cmd
}
