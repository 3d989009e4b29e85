package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/zfogg/postcheck/internal/analysis"
	"github.com/zfogg/postcheck/internal/llm"
	"github.com/zfogg/postcheck/pkg/api"
	"github.com/zfogg/postcheck/pkg/config"
	"github.com/zfogg/postcheck/pkg/logger"
	"github.com/zfogg/postcheck/pkg/output"
	"golang.org/x/term"
)

var (
	analyzeCountry   string
	analyzePlatform  string
	analyzeEngine    string
	analyzeLocal     bool
	analyzeFailUnder int
)

// errRiskThreshold makes the process exit 2 so scripts can gate on a score
var errRiskThreshold = errors.New("risk score below threshold")

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text|-]",
	Short: "Score a post for a target country",
	Long: `Score a post for a target country.

The post is taken from the arguments, or read from stdin when the only
argument is "-" or stdin is piped.`,
	Example: `  postcheck analyze --country DE "I hate this stupid government"
  cat draft.txt | postcheck analyze --country JP --platform twitter
  postcheck analyze --local --fail-under 60 -o json - < draft.txt`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeCountry, "country", "c", "", "Two-letter country code (default: server default)")
	analyzeCmd.Flags().StringVarP(&analyzePlatform, "platform", "p", "", "Platform the post is for, e.g. twitter, linkedin")
	analyzeCmd.Flags().StringVarP(&analyzeEngine, "engine", "e", "", "Scoring engine: heuristic, model, auto")
	analyzeCmd.Flags().BoolVar(&analyzeLocal, "local", false, "Score in-process instead of calling the server")
	analyzeCmd.Flags().IntVar(&analyzeFailUnder, "fail-under", 0, "Exit with status 2 when the risk score is below this value")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	content, err := readContent(args, cmd.InOrStdin(), stdinIsTerminal())
	if err != nil {
		return err
	}

	country := firstNonEmpty(analyzeCountry, config.GetString("analysis.country"))
	platform := firstNonEmpty(analyzePlatform, config.GetString("analysis.platform"))
	engine := strings.ToLower(firstNonEmpty(analyzeEngine, config.GetString("analysis.engine")))
	if _, ok := analysis.ParseEngine(engine, ""); !ok {
		return fmt.Errorf("invalid engine %q (want heuristic, model or auto)", engine)
	}

	var result *analysis.Result
	if analyzeLocal {
		result, err = analyzeLocally(cmd.Context(), content, country, platform, analysis.Engine(engine))
	} else {
		result, err = api.Analyze(api.AnalyzeRequest{
			Content:  content,
			Platform: platform,
			Country:  country,
			Engine:   engine,
		})
	}
	if err != nil {
		return err
	}

	if err := output.PrintResult(result); err != nil {
		return err
	}
	if analyzeFailUnder > 0 && result.RiskScore < analyzeFailUnder {
		return fmt.Errorf("%w: %d < %d", errRiskThreshold, result.RiskScore, analyzeFailUnder)
	}
	return nil
}

// analyzeLocally scores with the embedded profiles. The model engine is used
// only when an LLM key is configured locally.
func analyzeLocally(ctx context.Context, content, country, platform string, engine analysis.Engine) (*analysis.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := analysis.ServiceConfig{DefaultEngine: analysis.EngineHeuristic}
	if key := config.GetString("llm.api_key"); key != "" {
		model := config.GetString("llm.model")
		client := llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL: config.GetString("llm.base_url"),
			APIKey:  key,
			Model:   model,
			Timeout: time.Duration(config.GetInt("llm.timeout")) * time.Second,
		})
		cfg.Model = analysis.NewModelAnalyzer(client, llm.Params{Model: model})
		cfg.ModelEnabled = true
	}
	logger.Debug("Local analysis", "country", country, "engine", engine, "model_enabled", cfg.ModelEnabled)

	result, err := analysis.NewService(cfg).Analyze(ctx, analysis.Request{
		Content:      content,
		Platform:     platform,
		Jurisdiction: strings.ToUpper(country),
		Engine:       engine,
	})
	if err != nil {
		return nil, err
	}
	if result.JurisdictionFallback {
		fmt.Fprintf(os.Stderr, "Warning: unknown country %q, scored for %s\n", country, result.Jurisdiction)
	}
	return &result, nil
}

// readContent joins the arguments, or reads stdin for "-" or a pipe
func readContent(args []string, stdin io.Reader, isTTY bool) (string, error) {
	var content string
	switch {
	case len(args) == 1 && args[0] == "-", len(args) == 0 && !isTTY:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		content = string(data)
	case len(args) > 0:
		content = strings.Join(args, " ")
	default:
		return "", errors.New("no post given: pass text as an argument or pipe it on stdin")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("post is empty")
	}
	return content, nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func exitCode(err error) int {
	if errors.Is(err, errRiskThreshold) {
		return 2
	}
	return 1
}
