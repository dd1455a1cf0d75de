package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/HyperbeeAI/hyperbee-go/cli/config"
	"github.com/HyperbeeAI/hyperbee-go/hyperbee"
)

const defaultModelID = "hive"

func (a *App) newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [project-name]",
		Short: "Write a starter config, or scaffold a project",
		Long: `Without arguments, write a starter config file to the --config path
(default ~/.hyperbee/config.yaml).

With a project name, create a project directory with:
  - main.go: A starter Go program using the HyperBee SDK
  - .env.example: The environment variables the program reads

Examples:
  hyperbee init
  hyperbee init myapp`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return a.runInitProject(args[0])
			}
			return a.runInitConfig()
		},
	}
	cmd.Flags().BoolVar(&a.initForce, "force", false, "Overwrite an existing config file")
	return cmd
}

func (a *App) runInitConfig() error {
	path := a.cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil && !a.initForce {
		return exitWithCode(ExitValidation, fmt.Errorf("config %s already exists (use --force to overwrite)", path))
	}

	retries := hyperbee.DefaultMaxRetries
	starter := &config.Config{
		DefaultModel:    defaultModelID,
		ChatBaseURL:     hyperbee.DefaultChatBaseURL,
		PipelineBaseURL: hyperbee.DefaultPipelineBaseURL,
		Timeout:         hyperbee.DefaultTimeout.String(),
		MaxRetries:      &retries,
	}
	if err := config.SaveConfig(path, starter); err != nil {
		return exitWithCode(ExitValidation, fmt.Errorf("failed to write config: %w", err))
	}

	fmt.Fprintf(a.stdout, "Wrote %s\n\n", path)
	fmt.Fprintln(a.stdout, "Next steps:")
	fmt.Fprintln(a.stdout, "  hyperbee keys set")
	fmt.Fprintln(a.stdout, `  hyperbee chat --prompt "Hello"`)
	return nil
}

func (a *App) runInitProject(projectPath string) error {
	projectName := filepath.Base(projectPath)
	if err := validateProjectName(projectName); err != nil {
		return exitWithCode(ExitValidation, err)
	}

	if _, err := os.Stat(projectPath); err == nil {
		return exitWithCode(ExitValidation, fmt.Errorf("directory %q already exists", projectPath))
	}
	if err := os.MkdirAll(projectPath, 0755); err != nil {
		return exitWithCode(ExitValidation, fmt.Errorf("failed to create directory %s: %w", projectPath, err))
	}

	data := templateData{Model: defaultModelID}
	if a.model != "" {
		data.Model = a.model
	}
	files := map[string]string{
		"main.go":      mainGoTemplate,
		".env.example": envExampleTemplate,
	}
	for name, content := range files {
		if err := generateFile(filepath.Join(projectPath, name), content, data); err != nil {
			return exitWithCode(ExitValidation, fmt.Errorf("failed to create %s: %w", name, err))
		}
	}

	fmt.Fprintf(a.stdout, "Created HyperBee project: %s\n\n", projectName)
	fmt.Fprintln(a.stdout, "Next steps:")
	fmt.Fprintf(a.stdout, "  cd %s\n", projectPath)
	fmt.Fprintf(a.stdout, "  export %s=<your-key>\n", hyperbee.EnvAPIKey)
	fmt.Fprintln(a.stdout, "  go run main.go")
	return nil
}

var validName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

func validateProjectName(name string) error {
	if name == "" {
		return errors.New("project name cannot be empty")
	}
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid project name %q: must start with a letter and contain only letters, numbers, underscores, and hyphens", name)
	}
	if name == "hyperbee" {
		return fmt.Errorf("invalid project name %q: reserved name", name)
	}
	return nil
}

type templateData struct {
	Model string
}

func generateFile(path string, tmplContent string, data templateData) error {
	tmpl, err := template.New(filepath.Base(path)).Parse(tmplContent)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, data)
}

// Templates

var mainGoTemplate = `package main

import (
	"context"
	"fmt"
	"os"

	"github.com/HyperbeeAI/hyperbee-go/core"
	"github.com/HyperbeeAI/hyperbee-go/hyperbee"
)

func main() {
	// Reads HYPERBEE_API_KEY from the environment
	client, err := hyperbee.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	resp, err := client.Chat.Completions.Create(context.Background(), core.ChatCompletionParams{
		Model:    "{{.Model}}",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "Hello, world!"},
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	fmt.Println(resp.Text())
}
`

var envExampleTemplate = `HYPERBEE_API_KEY=
# HYPERBEE_ORG_ID=
# HYPERBEE_BASE_URL=
`
