package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/HyperbeeAI/hyperbee-go/cli/keystore"
)

func (a *App) newKeysCommand() *cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
		Long: `Manage stored API keys. Keys are encrypted at rest.

The CLI uses the "hyperbee" entry when --api-key is not given. Set
HYPERBEE_KEYSTORE_PASSPHRASE to protect the file with your own passphrase.`,
	}

	keysCmd.AddCommand(&cobra.Command{
		Use:   "set [name]",
		Short: "Store an API key (default name: hyperbee)",
		Long:  `Store an API key. The key is prompted without echo when stdin is a terminal.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runKeysSet(keyName(args))
		},
	})
	keysCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored API keys",
		Long:  `List all stored API keys. Only names are shown, never key values.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runKeysList()
		},
	})
	keysCmd.AddCommand(&cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a stored API key (default name: hyperbee)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runKeysDelete(keyName(args))
		},
	})

	return keysCmd
}

func keyName(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return keystore.DefaultKeyName
}

func (a *App) readSecret(prompt string) (string, error) {
	fmt.Fprint(a.stdout, prompt)

	// Read without echo if terminal
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		keyBytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stdout)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(keyBytes)), nil
	}

	// Fallback for non-terminal (e.g., piped input)
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *App) runKeysSet(name string) error {
	apiKey, err := a.readSecret(fmt.Sprintf("Enter API key for %s: ", name))
	if err != nil {
		return exitWithCode(ExitValidation, fmt.Errorf("failed to read key: %w", err))
	}
	if apiKey == "" {
		return exitWithCode(ExitValidation, errors.New("API key cannot be empty"))
	}

	ks, err := a.newKeystore()
	if err != nil {
		return exitWithCode(ExitValidation, fmt.Errorf("failed to open keystore: %w", err))
	}
	if err := ks.Set(name, apiKey); err != nil {
		return exitWithCode(ExitValidation, fmt.Errorf("failed to store key: %w", err))
	}

	fmt.Fprintf(a.stdout, "API key for %s stored successfully.\n", name)
	return nil
}

func (a *App) runKeysList() error {
	ks, err := a.newKeystore()
	if err != nil {
		return exitWithCode(ExitValidation, fmt.Errorf("failed to open keystore: %w", err))
	}

	names, err := ks.List()
	if err != nil {
		return exitWithCode(ExitValidation, fmt.Errorf("failed to list keys: %w", err))
	}

	if a.jsonOutput {
		return a.outputJSON(map[string][]string{"keys": names})
	}
	if len(names) == 0 {
		fmt.Fprintln(a.stdout, "No API keys stored.")
		return nil
	}
	fmt.Fprintln(a.stdout, "Stored keys:")
	for _, name := range names {
		fmt.Fprintf(a.stdout, "  - %s\n", name)
	}
	return nil
}

func (a *App) runKeysDelete(name string) error {
	ks, err := a.newKeystore()
	if err != nil {
		return exitWithCode(ExitValidation, fmt.Errorf("failed to open keystore: %w", err))
	}

	if err := ks.Delete(name); err != nil {
		var notFound *keystore.ErrKeyNotFound
		if errors.As(err, &notFound) {
			return exitWithCode(ExitValidation, fmt.Errorf("no key stored for %s", name))
		}
		return exitWithCode(ExitValidation, fmt.Errorf("failed to delete key: %w", err))
	}

	fmt.Fprintf(a.stdout, "API key for %s deleted.\n", name)
	return nil
}
