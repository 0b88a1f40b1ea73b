package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/liquidhire/internal/logger"
	"go.uber.org/zap"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [skills]",
	Short: "Search internships for comma separated skills and print them as JSON",
	Args:  cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		searchJobs(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)

	jobsCmd.Flags().String("location", "Remote", "job location")
}

func searchJobs(cmd *cobra.Command, query string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig(false)
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	location, _ := cmd.Flags().GetString("location")

	s, cleanup := newScraper(config.Jobs, logger)
	defer cleanup()

	listings, err := s.Search(ctx, query, location)
	if err != nil {
		logger.Fatal("searching jobs", zap.Error(err))
	}

	pretty, _ := json.MarshalIndent(listings, "", "  ")
	fmt.Println(string(pretty))
}
