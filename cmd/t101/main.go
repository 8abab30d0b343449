package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/adrianliechti/t101/pkg/client"
	"github.com/adrianliechti/t101/pkg/otel"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	apiKey     string
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "t101",
	Short: "T-101 AI terminal",
	Long:  "Talk to the T-101 from your terminal, or run the backend that proxies chat, speech and transcription.",

	Version: version,

	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		setupLogging(logLevel)
		return nil
	},
}

func init() {
	// a missing .env is fine
	_ = godotenv.Load()

	flags := rootCmd.PersistentFlags()

	flags.StringVar(&serverURL, "url", envOr("T101_URL", "http://localhost:3000"), "server url")
	flags.StringVar(&apiKey, "api-key", os.Getenv("API_KEY"), "server api key")
	flags.StringVar(&configPath, "config", "t101.yaml", "config file")
	flags.StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "info"), "log level")

	rootCmd.AddCommand(serveCmd, chatCmd, sayCmd, listenCmd, voicesCmd, cacheCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := execute(ctx, rootCmd)

	stop()
	os.Exit(code)
}

// execute runs cmd and maps failures, panics included, to exit code 1.
func execute(ctx context.Context, cmd *cobra.Command) (code int) {
	defer func() {
		if r := recover(); r != nil {
			printError(fmt.Errorf("panic: %v", r))
			code = 1
		}
	}()

	if err := cmd.ExecuteContext(ctx); err != nil {
		printError(err)
		return 1
	}

	return 0
}

// setupLogging installs charmbracelet/log as the slog handler unless telemetry
// export already replaced the default logger.
func setupLogging(level string) {
	if otel.EnableTelemetry {
		return
	}

	var l slog.Level

	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}

	if otel.EnableDebug {
		l = slog.LevelDebug
	}

	handler := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           log.Level(l),
	})

	slog.SetDefault(slog.New(handler))
}

func newClient() *client.Client {
	var options []client.RequestOption

	if apiKey != "" {
		options = append(options, client.WithAPIKey(apiKey))
	}

	return client.New(serverURL, options...)
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("ERROR")+" "+err.Error())
}
