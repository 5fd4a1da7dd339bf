package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"honnef.co/go/ptframe/internal/server"
	"honnef.co/go/ptframe/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts an HTTP server that evaluates posted rigs and keeps the last good
result of every rig, in memory or in Redis.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		redisAddr, _ := cmd.Flags().GetString("redis")
		redisPassword, _ := cmd.Flags().GetString("redis-password")
		redisDB, _ := cmd.Flags().GetInt("redis-db")
		redisPrefix, _ := cmd.Flags().GetString("redis-prefix")
		redisTTL, _ := cmd.Flags().GetDuration("redis-ttl")

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}

		var st store.Store
		if redisAddr != "" {
			opts := []store.Option{store.WithTTL(redisTTL)}
			if redisPrefix != "" {
				opts = append(opts, store.WithPrefix(redisPrefix))
			}
			rs := store.NewRedis(redisAddr, redisPassword, redisDB, opts...)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := rs.Ping(ctx)
			cancel()
			if err != nil {
				rs.Close()
				return err
			}
			logger.Info("storing results in redis", "addr", redisAddr)
			st = rs
		} else {
			logger.Info("storing results in memory")
			st = store.NewMemory()
		}
		defer st.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		srv := &http.Server{
			Addr:              addr,
			Handler:           server.NewHandler(st, logger, reg),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := srv.Close(); err != nil {
					logger.Error("failed to close server", "error", err)
				}
			}
			logger.Info("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().String("redis", "", "Redis address; results are kept in memory if empty")
	serveCmd.Flags().String("redis-password", "", "Redis password")
	serveCmd.Flags().Int("redis-db", 0, "Redis database")
	serveCmd.Flags().String("redis-prefix", "", "Prefix of the Redis keys")
	serveCmd.Flags().Duration("redis-ttl", 0, "Expiry of stored results; 0 keeps them forever")
}
