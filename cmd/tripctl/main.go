// Package main implements tripctl, a command-line companion to the travel
// planner server for trying the extractors and managing the database.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/ai-travel-planner/pkg/utils"
)

var (
	// logLevel controls diagnostics written to stderr
	logLevel string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tripctl",
	Short: "CLI for the AI travel planner",
	Long: `tripctl runs the expense and trip extractors locally and applies
database migrations without starting the HTTP server.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level for diagnostics on stderr")
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(migrateCmd)
}

// newLogger logs to stderr so command output on stdout stays machine readable
func newLogger() (*zap.Logger, error) {
	return utils.NewLogger(utils.LoggerConfig{
		Level:      logLevel,
		OutputPath: "stderr",
		Format:     "console",
		Service:    "tripctl",
	})
}

// cliLogger adapts zap to the keysAndValues logger of the extraction chain
type cliLogger struct {
	sugar *zap.SugaredLogger
}

func (l cliLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l cliLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l cliLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}
