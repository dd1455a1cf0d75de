package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/HyperbeeAI/hyperbee-go/hyperbee"
)

func TestVersionVariables(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Commit == "" {
		t.Error("Commit should not be empty")
	}
	if BuildDate == "" {
		t.Error("BuildDate should not be empty")
	}
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t, "http://chat.invalid", "http://rag.invalid")

	if err := h.run("version"); err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(h.stdout.String(), "hyperbee "+Version) {
		t.Errorf("stdout = %q", h.stdout.String())
	}

	if err := h.run("version", "--json"); err != nil {
		t.Fatalf("version --json error = %v", err)
	}
	var out map[string]string
	if err := json.Unmarshal(h.stdout.Bytes(), &out); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if out["sdkVersion"] != hyperbee.Version {
		t.Errorf("sdkVersion = %q, want %q", out["sdkVersion"], hyperbee.Version)
	}
}
