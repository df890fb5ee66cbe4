package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/config"
	"github.com/amoylab/nextcrm/internal/crm/seed"
	"github.com/amoylab/nextcrm/internal/notify"
	"github.com/amoylab/nextcrm/pkg/trace"
	"github.com/amoylab/nextcrm/pkg/version"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultConfigFile = "apiserver.yaml"

var (
	configPath string
	seedOpts   seed.Options
	consumer   string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", cnst.CommandName, version.Get())
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty database with demo data",
		Run: func(cmd *cobra.Command, args []string) {
			runSeed()
		},
	}

	notifyWorkerCmd = &cobra.Command{
		Use:   "notify-worker",
		Short: "Deliver lead notifications queued on the redis stream",
		Run: func(cmd *cobra.Command, args []string) {
			runNotifyWorker()
		},
	}

	rootCmd = &cobra.Command{
		Use:   cnst.CommandName,
		Short: "NextCRM API Server",
		Long:  `NextCRM API Server serves the lead, student, application and admission API`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "conf", "c", defaultConfigFile, "path to configuration file")
	seedCmd.Flags().Int64Var(&seedOpts.Seed, "seed", 0, "random seed, 0 picks one")
	seedCmd.Flags().IntVar(&seedOpts.Regions, "regions", 2, "regions to create")
	seedCmd.Flags().IntVar(&seedOpts.BranchesPerRegion, "branches", 2, "branches per region")
	seedCmd.Flags().IntVar(&seedOpts.CounselorsPerBranch, "counselors", 2, "counselors per branch")
	seedCmd.Flags().IntVar(&seedOpts.Leads, "leads", 40, "leads to create")
	notifyWorkerCmd.Flags().StringVar(&consumer, "consumer", "", "consumer name in the group, defaults to the hostname")
	rootCmd.AddCommand(versionCmd, seedCmd, notifyWorkerCmd)
}

// bootstrap loads configuration and the logger every subcommand starts from
func bootstrap() (*config.APIServerConfig, *zap.Logger) {
	cfg, cfgPath, err := config.LoadConfig[config.APIServerConfig](configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration %s: %v\n", cfgPath, err)
		os.Exit(1)
	}
	lg := initLogger(cfg)
	lg.Info("Loaded configuration", zap.String("path", cfgPath))
	return cfg, lg
}

func run() {
	cfg, lg := bootstrap()
	defer lg.Sync()

	if cfg.HTTP.Mode != "" {
		gin.SetMode(cfg.HTTP.Mode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := trace.InitTracing(ctx, &cfg.Tracing, lg)
	if err != nil {
		lg.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			lg.Error("Failed to flush traces", zap.Error(err))
		}
	}()

	a, err := newApp(ctx, cfg, lg, true)
	if err != nil {
		lg.Fatal("Failed to initialize apiserver", zap.Error(err))
	}
	defer a.Close()

	if err := a.services.Users.EnsureSuperAdmin(ctx, cfg.SuperAdmin); err != nil {
		lg.Fatal("Failed to bootstrap super admin", zap.Error(err))
	}

	r, err := a.router()
	if err != nil {
		lg.Fatal("Failed to build router", zap.Error(err))
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("Starting apiserver", zap.String("version", version.Get()), zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("Shutting down apiserver")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("Failed to shutdown server", zap.Error(err))
	}
}

func runSeed() {
	cfg, lg := bootstrap()
	defer lg.Sync()

	ctx := context.Background()
	a, err := newApp(ctx, cfg, lg, false)
	if err != nil {
		lg.Fatal("Failed to initialize apiserver", zap.Error(err))
	}
	defer a.Close()

	summary, err := seed.Run(ctx, a.store, seed.Services{
		Users:        a.services.Users,
		Leads:        a.services.Leads,
		Students:     a.services.Students,
		Applications: a.services.Applications,
		Admissions:   a.services.Admissions,
	}, seedOpts, lg)
	if err != nil {
		lg.Fatal("Failed to seed demo data", zap.Error(err))
	}
	fmt.Printf("seeded %d users, %d leads, %d students\n", summary.Users, summary.Leads, summary.Students)
}

func runNotifyWorker() {
	cfg, lg := bootstrap()
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, lg, false)
	if err != nil {
		lg.Fatal("Failed to initialize notify worker", zap.Error(err))
	}
	defer a.Close()
	if a.redis == nil {
		lg.Fatal("notify-worker requires redis.addr")
	}

	name := consumer
	if name == "" {
		name, _ = os.Hostname()
	}
	w := notify.NewWorker(a.redis, cfg.Notifier.Stream, cfg.Notifier.Group, name, a.mailer, a.metrics, lg)
	if err := w.Run(ctx); err != nil {
		lg.Fatal("Notify worker stopped", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
