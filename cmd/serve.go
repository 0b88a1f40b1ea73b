package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/liquidhire/internal/interview"
	"github.com/spigell/liquidhire/internal/logger"
	"github.com/spigell/liquidhire/internal/resume"
	"github.com/spigell/liquidhire/internal/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd.Flags().Changed("listen"))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address (default :8000)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve(listenChanged bool) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync() //nolint:errcheck

	config, err := getConfig(listenChanged)
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the liquidhire api", zap.String("version", resolvedVersion()))

	chain := newChain(ctx, config.AI, logger)
	jobsScraper, cleanup := newScraper(config.Jobs, logger)
	defer cleanup()

	srv := server.New(logger.Named("http"), server.Config{BodyLimit: config.Server.BodyLimit}, server.Deps{
		Interview: interview.NewService(chain, logger.Named("interview"), config.AI.MaxLogLength),
		Coach:     resume.NewCoach(chain, logger.Named("resume"), config.AI.MaxLogLength),
		Jobs:      jobsScraper,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(config.Server.Listen)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", config.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("http server", zap.Error(err))
	}
	logger.Info("stopped")
}
