package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/ai-travel-planner/internal/application/extraction"
	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/parser"
	"github.com/garyjia/ai-travel-planner/internal/infrastructure/external/openai"
	"github.com/garyjia/ai-travel-planner/pkg/utils"
)

const (
	cliUser      = "tripctl"
	defaultModel = "gpt-4o-mini"
)

var (
	parseTimeout time.Duration
	localOnly    bool
	promptsPath  string
)

func init() {
	parseCmd.PersistentFlags().DurationVar(&parseTimeout, "timeout", 15*time.Second, "timeout of the remote extraction call")
	parseCmd.PersistentFlags().BoolVar(&localOnly, "local", false, "skip the remote model even when OPENAI_API_KEY is set")
	parseCmd.PersistentFlags().StringVar(&promptsPath, "prompts", "", "prompts YAML overriding the built-in prompts")

	parseCmd.AddCommand(parseExpenseCmd)
	parseCmd.AddCommand(parseTripCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extract a draft from an utterance",
	Long: `Extract an expense or trip request draft from text and print it as JSON.

The remote model is used when OPENAI_API_KEY is set (OPENAI_BASE_URL and
OPENAI_MODEL select other OpenAI-compatible providers); any failure falls back
to the local heuristic parser.

Examples:
  # Expense from an utterance
  tripctl parse expense "打车花了50元"

  # Trip request, heuristic only
  tripctl parse trip --local "我想去成都玩5天，预算5000元，两个人"

  # Read the utterance from stdin
  echo "午饭吃了火锅花了120" | tripctl parse expense -`,
}

var parseExpenseCmd = &cobra.Command{
	Use:   "expense <text|->",
	Short: "Extract an expense draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(cmd, args[0], extraction.KindExpense)
	},
}

var parseTripCmd = &cobra.Command{
	Use:   "trip <text|->",
	Short: "Extract a trip request draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(cmd, args[0], extraction.KindTrip)
	},
}

func runParse(cmd *cobra.Command, arg, kind string) error {
	text, err := readUtterance(arg, cmd.InOrStdin())
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	chain, creds, err := newChain(logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), parseTimeout+5*time.Second)
	defer cancel()

	var draft interface{}
	switch kind {
	case extraction.KindExpense:
		d, err := chain.ExtractExpense(ctx, cliUser, creds, text)
		if errors.Is(err, parser.ErrNoAmount) {
			_ = printJSON(cmd.OutOrStdout(), d)
			return fmt.Errorf("no amount recognized, enter the expense manually")
		}
		if err != nil {
			return err
		}
		draft = d
	default:
		d, err := chain.ExtractTripRequest(ctx, cliUser, creds, text)
		if err != nil {
			return err
		}
		draft = d
	}

	return printJSON(cmd.OutOrStdout(), draft)
}

// newChain builds the extraction chain from the environment. Without
// OPENAI_API_KEY, or with --local, the chain runs the heuristic only.
func newChain(logger *zap.Logger) (*extraction.Chain, port.LLMCredentials, error) {
	chainLogger := cliLogger{sugar: logger.Named("extraction").Sugar()}

	creds := port.LLMCredentials{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   os.Getenv("OPENAI_MODEL"),
	}
	if localOnly || creds.APIKey == "" {
		return extraction.NewChain(nil, parseTimeout, chainLogger, nil), port.LLMCredentials{}, nil
	}

	prompts, err := openai.LoadPrompts(promptsPath)
	if err != nil {
		return nil, port.LLMCredentials{}, fmt.Errorf("failed to load prompts: %w", err)
	}
	model := creds.Model
	if model == "" {
		model = defaultModel
	}
	factory := openai.NewFactory(prompts, model, logger.Named("openai"))
	return extraction.NewChain(factory, parseTimeout, chainLogger, nil), creds, nil
}

// readUtterance returns arg, or all of stdin when arg is "-"
func readUtterance(arg string, stdin io.Reader) (string, error) {
	text := arg
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}
	text = utils.SanitizeText(text)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("text is empty")
	}
	return text, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
