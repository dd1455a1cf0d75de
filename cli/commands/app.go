// Package commands implements the hyperbee command line using Cobra.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/HyperbeeAI/hyperbee-go/cli/config"
	"github.com/HyperbeeAI/hyperbee-go/cli/keystore"
	"github.com/HyperbeeAI/hyperbee-go/hyperbee"
)

// ConfigLoader loads CLI config from a path.
type ConfigLoader func(path string) (*config.Config, error)

// ClientFactory creates a HyperBee client from resolved options.
type ClientFactory func(opts ...hyperbee.Option) (*hyperbee.Client, error)

// KeystoreFactory creates a keystore instance.
type KeystoreFactory func() (keystore.Keystore, error)

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	loadConfig  ConfigLoader
	newClient   ClientFactory
	newKeystore KeystoreFactory
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer

	cfgFile    string
	model      string
	apiKey     string
	baseURL    string
	jsonOutput bool
	verbose    bool
	cfg        *config.Config
	logger     *slog.Logger

	chatPrompt      string
	chatSystem      string
	chatNamespace   string
	chatTemperature float64
	chatMaxTokens   int
	chatStream      bool

	completePrompt    string
	completeMaxTokens int
	completeStream    bool

	pipelineNamespace string
	pipelineQuery     string
	pipelineTopK      int

	initForce bool
}

// WithConfigLoader injects a config loader dependency.
func WithConfigLoader(loader ConfigLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loadConfig = loader
		}
	}
}

// WithClientFactory injects a client factory dependency.
func WithClientFactory(factory ClientFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newClient = factory
		}
	}
}

// WithKeystoreFactory injects a keystore factory dependency.
func WithKeystoreFactory(factory KeystoreFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newKeystore = factory
		}
	}
}

// WithIO injects process I/O streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdin != nil {
			a.stdin = stdin
		}
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// NewApp creates a new CLI app with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		loadConfig:  config.LoadConfig,
		newClient:   hyperbee.New,
		newKeystore: keystore.NewKeystore,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.root = a.newRootCommand()
	return a
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "hyperbee",
		Short: "HyperBee - command line for the HyperBee inference API",
		Long: `hyperbee is a command-line interface for the HyperBee API.

Use it to chat with models, query document namespaces through the
pipeline backend, list models and manage your API key.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	// Global flags available to all commands.
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.hyperbee/config.yaml)")
	root.PersistentFlags().StringVar(&a.model, "model", "", "model ID (e.g. hive)")
	root.PersistentFlags().StringVar(&a.apiKey, "api-key", "", "API key (default: keystore, then HYPERBEE_API_KEY)")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "override the initial base URL")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "emit JSON output")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(a.newChatCommand())
	root.AddCommand(a.newCompleteCommand())
	root.AddCommand(a.newModelsCommand())
	root.AddCommand(a.newPipelineCommand())
	root.AddCommand(a.newKeysCommand())
	root.AddCommand(a.newInitCommand())
	root.AddCommand(a.newVersionCommand())

	return root
}

// SetArgs overrides the command line arguments, for tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// Execute runs the root command. Errors are reported on stderr and
// returned; they implement ExitCode() int.
func (a *App) Execute() error {
	err := a.root.Execute()
	if err == nil {
		return nil
	}
	if _, ok := err.(*exitError); !ok {
		// Flag and argument errors from cobra itself
		err = exitWithCode(ExitValidation, err)
	}
	a.reportError(err)
	return err
}

func (a *App) initConfig() error {
	// stderr carries the error report, so logs only appear with --verbose
	a.logger = slog.New(slog.DiscardHandler)
	if a.verbose {
		a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	path := a.cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := a.loadConfig(path)
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}
	a.cfg = cfg

	// Apply config defaults if flags not set.
	if a.model == "" && cfg.DefaultModel != "" {
		a.model = cfg.DefaultModel
	}

	return nil
}

// Execute runs a new default app with the process arguments.
func Execute() error {
	return NewApp().Execute()
}
