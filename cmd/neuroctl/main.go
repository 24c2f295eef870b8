package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/neuro-fusion/internal/client"
	"github.com/bryanwahyu/neuro-fusion/internal/logging"
)

type globalOptions struct {
	server   string
	apiKey   string
	timeout  time.Duration
	logLevel string
	log      *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "neuroctl",
		Short: "Command line client for the neuro-fusion prediction API",
		Long: `neuroctl drives the multimodal screening flow against a running API server:
upload an MRI image, an EEG recording and clinical notes, watch the analysis
stages, and review the top ranked conditions.

Results are for research and demonstration only.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			log, err := logging.New(opts.logLevel, "console")
			if err != nil {
				return err
			}
			opts.log = log
			return nil
		},
	}

	server := os.Getenv("NEURO_API_URL")
	if server == "" {
		server = client.DefaultBaseURL
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", server, "API base URL (env NEURO_API_URL)")
	cmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", os.Getenv("NEURO_API_KEY"), "API key for protected endpoints (env NEURO_API_KEY)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "HTTP timeout")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(healthCmd(opts))
	cmd.AddCommand(conditionsCmd(opts))
	cmd.AddCommand(loadModelCmd(opts))
	cmd.AddCommand(analyzeCmd(opts))
	cmd.AddCommand(historyCmd(opts))
	return cmd
}

func (o *globalOptions) client() *client.Client {
	return client.New(o.server,
		client.WithAPIKey(o.apiKey),
		client.WithHTTPClient(&http.Client{Timeout: o.timeout}),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
