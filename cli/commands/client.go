package commands

import (
	"errors"
	"fmt"

	"github.com/HyperbeeAI/hyperbee-go/cli/keystore"
	"github.com/HyperbeeAI/hyperbee-go/core"
	"github.com/HyperbeeAI/hyperbee-go/hyperbee"
)

// resolveAPIKey returns the --api-key flag, else the keystore entry.
// An empty result leaves the SDK to read HYPERBEE_API_KEY.
func (a *App) resolveAPIKey() (string, error) {
	if a.apiKey != "" {
		return a.apiKey, nil
	}

	ks, err := a.newKeystore()
	if err != nil {
		return "", fmt.Errorf("failed to open keystore: %w", err)
	}
	key, err := ks.Get(keystore.DefaultKeyName)
	if err != nil {
		var notFound *keystore.ErrKeyNotFound
		if errors.As(err, &notFound) {
			a.logger.Debug("no key in keystore, falling back to environment", "name", keystore.DefaultKeyName)
			return "", nil
		}
		return "", fmt.Errorf("failed to read keystore: %w", err)
	}
	return key, nil
}

// clientOptions turns flags and config into client options.
func (a *App) clientOptions() ([]hyperbee.Option, error) {
	key, err := a.resolveAPIKey()
	if err != nil {
		return nil, err
	}

	opts := []hyperbee.Option{
		hyperbee.WithAPIKey(key),
		hyperbee.WithLogger(a.logger),
		hyperbee.WithTelemetry(core.NewSlogTelemetryHook(a.logger)),
	}

	cfg := a.cfg
	if cfg.Organization != "" {
		opts = append(opts, hyperbee.WithOrganization(cfg.Organization))
	}
	if cfg.ChatBaseURL != "" {
		opts = append(opts, hyperbee.WithChatBaseURL(cfg.ChatBaseURL))
	}
	if cfg.PipelineBaseURL != "" {
		opts = append(opts, hyperbee.WithPipelineBaseURL(cfg.PipelineBaseURL))
	}
	switch {
	case a.baseURL != "":
		opts = append(opts, hyperbee.WithBaseURL(a.baseURL))
	case cfg.BaseURL != "":
		opts = append(opts, hyperbee.WithBaseURL(cfg.BaseURL))
	}
	if timeout, err := cfg.TimeoutDuration(); err != nil {
		return nil, err
	} else if timeout > 0 {
		opts = append(opts, hyperbee.WithTimeout(timeout))
	}
	if cfg.MaxRetries != nil {
		opts = append(opts, hyperbee.WithMaxRetries(*cfg.MaxRetries))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, hyperbee.WithDefaultHeaders(cfg.Headers))
	}
	return opts, nil
}

func (a *App) client() (*hyperbee.Client, error) {
	opts, err := a.clientOptions()
	if err != nil {
		return nil, exitWithCode(ExitValidation, err)
	}
	client, err := a.newClient(opts...)
	if err != nil {
		return nil, exitWithCode(ExitValidation, err)
	}
	return client, nil
}

func (a *App) requireModel() (core.ModelID, error) {
	if a.model == "" {
		return "", exitWithCode(ExitValidation,
			errors.New("model required: use --model flag or set default_model in config"))
	}
	return core.ModelID(a.model), nil
}
