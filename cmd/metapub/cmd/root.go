// Package cmd implements the metapub command line interface, a thin demo
// client for publishing to Facebook pages and Instagram business accounts.
package cmd

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	gmaw "github.com/metapub/go-meta-api-wrapper"
)

var (
	verbose bool
	probe   bool
	envFile string

	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "metapub", ReportTimestamp: true, Level: log.InfoLevel})
)

// Execute runs the root command.
func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "metapub",
		Short:         "Publish to Facebook pages and Instagram business accounts",
		Long:          "metapub publishes posts, stories, and reels through the Meta Graph API.\nCredentials come from the environment (or a .env file): META_ACCESS_TOKEN,\nMETA_PAGE_ID, META_BUSINESS_ID, and optionally META_APP_ID / META_APP_SECRET.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return err
				}
			} else {
				_ = godotenv.Load()
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&probe, "probe", false, "Run ffprobe checks on videos before uploading (needs ffprobe in $PATH)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file with credentials")

	cmd.AddCommand(newPostCommand())
	cmd.AddCommand(newStoryCommand())
	cmd.AddCommand(newReelCommand())
	cmd.AddCommand(newDeleteCommand())
	cmd.AddCommand(newAccountsCommand())

	return cmd
}

// newClient builds the API client from the environment.
func newClient() (*gmaw.Client, error) {
	cfg := &gmaw.Config{
		AccessToken: os.Getenv("META_ACCESS_TOKEN"),
		PageID:      os.Getenv("META_PAGE_ID"),
		BusinessID:  os.Getenv("META_BUSINESS_ID"),
		AppID:       os.Getenv("META_APP_ID"),
		AppSecret:   os.Getenv("META_APP_SECRET"),
		Logger:      slog.New(logger),
	}
	if probe {
		cfg.Prober = gmaw.FFProbe()
	}
	return gmaw.NewClient(cfg)
}
