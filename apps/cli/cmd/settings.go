package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/pagefetch/packages/core/config"
	"github.com/abdul-hamid-achik/pagefetch/packages/fetch"
	"github.com/abdul-hamid-achik/pagefetch/packages/http"
	"github.com/abdul-hamid-achik/pagefetch/packages/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	configFlag       string
	envFileFlag      string
	maxRedirectsFlag int
	timeoutFlag      string
	userAgentFlag    string
	proxyFlag        string
	archiveFlag      string
	logFormatFlag    string
	noColorFlag      bool
	verboseFlag      int // 0=off, 1=-v debug logging and hop summary

	outputFlag     string
	lineBreaksFlag bool
	jsonPathFlag   string
	selectorFlag   string
)

var outputFormats = []string{"log", "raw", "json"}

func registerCommonFlags(c *cobra.Command) {
	flags := c.PersistentFlags()
	flags.StringVar(&configFlag, "config", getEnvString("PAGEFETCH_CONFIG", ""), "Path to config file (env: PAGEFETCH_CONFIG)")
	flags.StringVar(&envFileFlag, "env-file", getEnvString("PAGEFETCH_ENV_FILE", ""), "Path to .env file exporting PAGEFETCH_* variables (env: PAGEFETCH_ENV_FILE)")
	flags.IntVar(&maxRedirectsFlag, "max-redirects", fetch.DefaultMaxRedirects, "Maximum number of redirects to follow (env: PAGEFETCH_MAX_REDIRECTS)")
	flags.StringVar(&timeoutFlag, "timeout", "30s", "Timeout of each hop (e.g., 30s, 1m) (env: PAGEFETCH_TIMEOUT in ms)")
	flags.StringVar(&userAgentFlag, "user-agent", http.DefaultUserAgent, "User-Agent header (env: PAGEFETCH_USER_AGENT)")
	flags.StringVar(&proxyFlag, "proxy", "", "Proxy URL for HTTP requests (env: PAGEFETCH_PROXY)")
	flags.StringVar(&archiveFlag, "archive", "", "Archive DSN: sqlite://path or bolt://path (env: PAGEFETCH_ARCHIVE)")
	flags.StringVar(&logFormatFlag, "log-format", "text", "Log format: text, json (env: PAGEFETCH_LOG_FORMAT)")
	flags.BoolVar(&noColorFlag, "no-color", false, "Disable colored output (env: PAGEFETCH_NO_COLOR)")
	flags.CountVarP(&verboseFlag, "verbose", "v", "Verbose output: debug logs and the redirect chain")
}

func registerFetchFlags(c *cobra.Command) {
	flags := c.Flags()
	flags.StringVarP(&outputFlag, "output", "o", "log", "Output format: log, raw, json (env: PAGEFETCH_OUTPUT)")
	flags.BoolVar(&lineBreaksFlag, "line-breaks", false, "Keep a line break after every body line (env: PAGEFETCH_LINE_BREAKS)")
	flags.StringVar(&jsonPathFlag, "json-path", "", "Print the value at this path of a JSON body (e.g., data.items.0.id)")
	flags.StringVar(&selectorFlag, "selector", "", "Print the text of HTML elements matching this CSS selector")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// settings is the resolved configuration of one command invocation
type settings struct {
	cfg    *config.Config
	log    *slog.Logger
	out    io.Writer
	errOut io.Writer
}

// flagConfig collects the flags that were set explicitly on the command line
func flagConfig(flags *pflag.FlagSet) (*config.Config, error) {
	c := &config.Config{}

	if flags.Changed("max-redirects") {
		if maxRedirectsFlag < 1 {
			return nil, fmt.Errorf("--max-redirects must be at least 1, got %d", maxRedirectsFlag)
		}
		c.MaxRedirects = maxRedirectsFlag
	}
	if flags.Changed("timeout") {
		d, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid --timeout: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("--timeout must be positive, got %s", d)
		}
		c.Timeout = int(d.Milliseconds())
	}
	if flags.Changed("user-agent") {
		c.UserAgent = userAgentFlag
	}
	if flags.Changed("proxy") {
		c.Proxy = proxyFlag
	}
	if flags.Changed("archive") {
		c.Archive = archiveFlag
	}
	if flags.Changed("log-format") {
		c.LogFormat = logFormatFlag
	}
	if flags.Changed("output") {
		c.Output = outputFlag
	}
	if flags.Changed("no-color") {
		c.NoColor = config.BoolPtr(noColorFlag)
	}
	if flags.Changed("line-breaks") {
		c.LineBreaks = config.BoolPtr(lineBreaksFlag)
	}
	if verboseFlag > 0 {
		c.Verbose = config.BoolPtr(true)
	}

	return c, nil
}

// resolveConfig layers the config file, the environment and the flags
func resolveConfig(flags *pflag.FlagSet) (*config.Config, error) {
	if envFileFlag != "" {
		if err := config.LoadEnvFile(envFileFlag); err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
	}

	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("failed to load config: %w", err))
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	fc, err := flagConfig(flags)
	if err != nil {
		return nil, withExitCode(ExitUsageError, err)
	}
	cfg = cfg.Merge(fc)

	cfg.Output = strings.ToLower(cfg.Output)
	if !validOutput(cfg.Output) {
		return nil, withExitCode(ExitUsageError, fmt.Errorf("unknown output format %q, expected one of %s", cfg.Output, strings.Join(outputFormats, ", ")))
	}

	return cfg, nil
}

func validOutput(format string) bool {
	for _, f := range outputFormats {
		if f == format {
			return true
		}
	}
	return false
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	cfg, err := resolveConfig(cmd.Flags())
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	if cfg.GetVerbose() {
		level = slog.LevelDebug
	}

	log := logging.New(
		logging.WithLevel(level),
		logging.WithFormat(logging.Format(cfg.LogFormat)),
		logging.WithOutput(cmd.ErrOrStderr()),
	)

	return &settings{
		cfg:    cfg,
		log:    log,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}, nil
}

func newFetcher(s *settings) *fetch.Fetcher {
	client := http.NewClient(
		http.WithTimeout(s.cfg.TimeoutDuration()),
		http.WithUserAgent(s.cfg.UserAgent),
		http.WithDefaultHeaders(s.cfg.Headers),
		http.WithProxy(s.cfg.Proxy),
	)

	return fetch.New(
		fetch.WithClient(client),
		fetch.WithMaxRedirects(s.cfg.MaxRedirects),
		fetch.WithLogger(s.log),
		fetch.WithLineBreaks(s.cfg.GetLineBreaks()),
		fetch.WithDefaultCharset(s.cfg.DefaultCharset),
	)
}

// fetchExitCode picks the exit code for an error returned by Open or Fetch
func fetchExitCode(err error) int {
	if errors.Is(err, fetch.ErrInvalidArgument) {
		return ExitUsageError
	}
	return ExitFetchError
}
