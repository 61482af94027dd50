package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/swclient/internal/mockapi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) mockServerCmd() *cobra.Command {
	var (
		addr     string
		secret   string
		ttl      time.Duration
		envelope bool
		seed     bool
	)

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve an in-memory SmartWork backend for local development",
		Long: `Serve the SmartWork /api/v1 surface from memory. With --seed one user per
role is created (admin@, manager@ and employee@smartwork.io, password
"password123") along with a few tasks and notifications.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := mockapi.New(mockapi.Config{
				Secret:   []byte(secret),
				TokenTTL: ttl,
				Envelope: envelope,
				Logger:   a.logger,
			})
			if err != nil {
				return err
			}
			if seed {
				if err := srv.Seed(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv,
				ReadHeaderTimeout: 5 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				errCh <- httpSrv.ListenAndServe()
			}()
			a.logger.Info("mock backend listening", zap.String("addr", addr), zap.Bool("envelope", envelope))

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			a.logger.Info("mock backend shutting down", zap.Int64("requests", srv.Requests()))
			return httpSrv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "listen address")
	cmd.Flags().StringVar(&secret, "secret", "swctl-mock-secret", "HS256 signing secret")
	cmd.Flags().DurationVar(&ttl, "token-ttl", time.Hour, "access token lifetime")
	cmd.Flags().BoolVar(&envelope, "envelope", false, "wrap replies in {success, data, error}")
	cmd.Flags().BoolVar(&seed, "seed", true, "create demo users, tasks and notifications")
	return cmd
}
