package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sitescribe/sitescribe/pkg/config"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitescribe",
		Short: "Mirror a website into markdown.",
		Long: `sitescribe discovers the pages of a website through its sitemap,
fetches a rendered text version of each page with bounded parallelism,
and merges the results into a single combined markdown document.`,
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	cmd.AddCommand(newCrawlCmd())

	return cmd
}

// initConfig loads .env (if present) and the Viper configuration.
func initConfig() {
	// A missing .env file is normal; env vars may come from the shell.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	if err := config.InitConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "config initialization failed: %v\n", err)
	}
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
