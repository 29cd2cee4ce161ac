// Package serve implements the serve sub-command.
package serve

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/farmkit/stratreg/api"
	"github.com/farmkit/stratreg/common"
	cmdCommon "github.com/farmkit/stratreg/cmd/common"
	"github.com/farmkit/stratreg/config"
	"github.com/farmkit/stratreg/log"
	"github.com/farmkit/stratreg/metrics"
	"github.com/farmkit/stratreg/strategies"
)

const (
	moduleName = "serve"
)

var (
	// Path to the configuration file.
	configFile string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the strategy list over HTTP",
		Run:   runServer,
	}
)

func runServer(cmd *cobra.Command, args []string) {
	// Initialize config.
	cfg, err := config.InitConfig(configFile)
	if err != nil {
		log.NewDefaultLogger("init").Error("init failed",
			"err", err,
		)
		os.Exit(1)
	}

	// Initialize common environment.
	if err = cmdCommon.Init(cfg); err != nil {
		log.NewDefaultLogger("init").Error("init failed",
			"err", err,
		)
		os.Exit(1)
	}
	logger := cmdCommon.RootLogger().WithModule(moduleName)

	if cfg.Server == nil {
		logger.Error("server config not provided")
		os.Exit(1)
	}

	service, err := NewService(cfg)
	if err != nil {
		logger.Error("service failed to start", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := service.Run(ctx); err != nil {
		logger.Error("service stopped", "err", err)
		os.Exit(1)
	}
	logger.Info("service stopped")
}

// Service serves the strategy API together with its metrics.
type Service struct {
	server       *http.Server
	pullService  *metrics.PullService
	pprofAddress string
	logger       *log.Logger
}

// NewService builds the strategy list and prepares the servers. It does
// not start listening.
func NewService(cfg *config.Config) (*Service, error) {
	logger := cmdCommon.RootLogger().WithModule(moduleName)

	_, regs, err := cmdCommon.LoadStrategies(cfg.Registry)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Server.Timeout()
	a := api.NewStrategyAPI(strategies.Current, regs.Tokens, regs.Addresses, timeout, cmdCommon.RootLogger())
	s := &Service{
		server: &http.Server{
			Addr:           cfg.Server.Endpoint,
			Handler:        a.Router(),
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   timeout + time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		logger: logger,
	}
	if cfg.Metrics != nil {
		s.pullService = metrics.NewPullService(cfg.Metrics.PullEndpoint, cmdCommon.RootLogger())
		s.pprofAddress = cfg.Metrics.PprofEndpoint
	}
	return s, nil
}

// Run serves until ctx is done or one of the servers fails, in which case
// the others are shut down as well.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return common.RunServer(ctx, s.server, s.logger)
	})
	if s.pullService != nil {
		g.Go(func() error {
			return s.pullService.Run(ctx)
		})
	}
	if s.pprofAddress != "" {
		g.Go(func() error {
			return cmdCommon.RunPprof(ctx, s.pprofAddress)
		})
	}

	s.logger.Info("started all services")
	return g.Wait()
}

// Register registers the serve sub-command.
func Register(parentCmd *cobra.Command) {
	serveCmd.Flags().StringVar(&configFile, "config", "./conf/server.yml", "path to the config.yml file")
	parentCmd.AddCommand(serveCmd)
}
