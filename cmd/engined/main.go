package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/catalog"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/config"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/engine"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/gate"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/journal"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/logging"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/transport"
)

var (
	configPath string
	logger     *zap.Logger
	cfg        *config.Config
)

// #region commands

var rootCmd = &cobra.Command{
	Use:   "engined",
	Short: "Agent cognition engine server",
	Long: `engined serves the Decide and Tick RPCs over gRPC, steps the mass
network on every tick, journals network versions and decisions to SQLite and
exposes Prometheus metrics.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the journal database and its initial mass network",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openJournal()
		if err != nil {
			return err
		}
		defer store.Close()
		cur, err := store.GetCurrent()
		if err != nil {
			return err
		}
		fmt.Printf("active network %s (tick %d, %d nodes)\n", cur.VersionID(), cur.Network.Tick, len(cur.Network.Nodes))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config [out]",
	Short: "Write the effective configuration as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cfg.Save(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "cognition.yaml", "config file (missing file uses defaults)")
	rootCmd.AddCommand(initCmd, configCmd)
}

// #endregion commands

// #region serve

// openJournal opens the store and creates the initial network when none is
// active yet.
func openJournal() (*journal.Store, error) {
	store, err := journal.NewStore(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	_, err = store.GetCurrent()
	if errors.Is(err, journal.ErrNotFound) {
		logger.Info("no active network found, creating initial network", zap.String("db", cfg.Database))
		root, nerr := cfg.Network()
		if nerr != nil {
			store.Close()
			return nil, nerr
		}
		_, err = store.CreateInitial(root)
	}
	if err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func serve(ctx context.Context) error {
	tables := catalog.Default()
	if cfg.Tables != "" {
		var err error
		if tables, err = catalog.Load(cfg.Tables); err != nil {
			return err
		}
	}
	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	eng := engine.New(cfg.EngineOptions(), tables, logger.Named("engine"))
	srv := transport.NewServer(eng,
		transport.WithJournal(store, cfg.AssignmentFor),
		transport.WithGate(gate.New(cfg.Commit)),
		transport.WithLogger(logger.Named("transport")),
	)
	gs := grpc.NewServer()
	health := srv.Register(gs)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.GRPCAddr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("grpc listening", zap.String("addr", cfg.Server.GRPCAddr))
		return gs.Serve(lis)
	})

	var metrics *http.Server
	if cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metrics = &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("metrics listening", zap.String("addr", cfg.Server.MetricsAddr))
			if err := metrics.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		health.Shutdown()
		gs.GracefulStop()
		if metrics != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metrics.Shutdown(sctx)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// #endregion serve

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
