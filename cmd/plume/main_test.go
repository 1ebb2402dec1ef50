package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCLIConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q
export_dir = %q
cache_dir = %q

[ai]
cache_enabled = false

[logging]
level = "error"
`,
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "exports"),
		filepath.Join(base, "cache"),
	)
	configPath := filepath.Join(base, "config.toml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--config", configPath, "--user", "tester"}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRunCLI(t *testing.T, configPath string, args ...string) string {
	t.Helper()
	out, _, err := runCLI(t, configPath, args...)
	if err != nil {
		t.Fatalf("plume %s: %v", strings.Join(args, " "), err)
	}
	return out
}

// createdProjectID extracts the project id from `project create` output.
func createdProjectID(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Created project ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Created project "))
		}
	}
	t.Fatalf("no project id in output %q", out)
	return ""
}

func TestCLIProjectLifecycle(t *testing.T) {
	configPath := writeCLIConfig(t)

	out := mustRunCLI(t, configPath, "project", "create", "Mémoire sur les réseaux",
		"--type", "memoire", "--discipline", "Informatique")
	projectID := createdProjectID(t, out)

	out = mustRunCLI(t, configPath, "project", "list")
	if !strings.Contains(out, "Mémoire sur les réseaux") || !strings.Contains(out, "draft") {
		t.Fatalf("project list missing new project: %q", out)
	}

	mustRunCLI(t, configPath, "section", "add", projectID, "Introduction",
		"--thesis", "Les réseaux pair à pair changent la distribution",
		"--guidance", "Poser le contexte et annoncer le plan")
	mustRunCLI(t, configPath, "section", "add", projectID, "Méthode")

	out = mustRunCLI(t, configPath, "project", "show", projectID)
	if !strings.Contains(out, "Introduction") || !strings.Contains(out, "Méthode") {
		t.Fatalf("project show missing sections: %q", out)
	}

	out = mustRunCLI(t, configPath, "project", "delete", projectID)
	if !strings.Contains(out, "Deleted project") {
		t.Fatalf("unexpected delete output: %q", out)
	}
	out = mustRunCLI(t, configPath, "project", "list")
	if strings.Contains(out, "Mémoire sur les réseaux") {
		t.Fatalf("deleted project still listed: %q", out)
	}
}

func TestCLISectionEditAndReorder(t *testing.T) {
	configPath := writeCLIConfig(t)

	out := mustRunCLI(t, configPath, "project", "create", "Article")
	projectID := createdProjectID(t, out)
	mustRunCLI(t, configPath, "section", "add", projectID, "Un")
	mustRunCLI(t, configPath, "section", "add", projectID, "Deux")

	out = mustRunCLI(t, configPath, "section", "edit", "1", "--body", "Premier corps de section.")
	if !strings.Contains(out, "revision 2") {
		t.Fatalf("expected revision bump in output: %q", out)
	}

	out = mustRunCLI(t, configPath, "section", "show", "1")
	if !strings.Contains(out, "Premier corps de section.") {
		t.Fatalf("section show missing body: %q", out)
	}

	mustRunCLI(t, configPath, "section", "reorder", projectID, "2,1")
	out = mustRunCLI(t, configPath, "project", "show", projectID)
	first := strings.Index(out, "Deux")
	second := strings.Index(out, "Un")
	if first == -1 || second == -1 || first > second {
		t.Fatalf("reorder not reflected in project show: %q", out)
	}

	if _, _, err := runCLI(t, configPath, "section", "reorder", projectID, "1"); err == nil {
		t.Fatal("expected partial reorder to fail")
	}
}

func TestCLIAdvanceAndSuggestionTriage(t *testing.T) {
	configPath := writeCLIConfig(t)

	out := mustRunCLI(t, configPath, "project", "create", "Essai")
	projectID := createdProjectID(t, out)
	mustRunCLI(t, configPath, "section", "add", projectID, "Ouverture",
		"--thesis", "La sédimentation préserve le contexte",
		"--guidance", "Définir les termes avant de dérouler")

	out = mustRunCLI(t, configPath, "readiness", projectID)
	if !strings.Contains(out, "Ready") {
		t.Fatalf("expected ready report, got %q", out)
	}

	out = mustRunCLI(t, configPath, "advance", projectID)
	if !strings.Contains(out, "storyboard to drafting") {
		t.Fatalf("unexpected advance output: %q", out)
	}
	if !strings.Contains(out, "Snapshot recorded") {
		t.Fatalf("expected snapshot id in output: %q", out)
	}

	out = mustRunCLI(t, configPath, "project", "show", projectID)
	if !strings.Contains(out, "in_drafting") {
		t.Fatalf("project did not move to drafting: %q", out)
	}

	out = mustRunCLI(t, configPath, "section", "show", "1")
	if !strings.Contains(out, "writing_prompts") {
		t.Fatalf("expected writing prompts after transfer: %q", out)
	}

	out = mustRunCLI(t, configPath, "accept", "1", "writing_prompts", "0")
	if !strings.Contains(out, "Accepted writing_prompts[0]") {
		t.Fatalf("unexpected accept output: %q", out)
	}
	out = mustRunCLI(t, configPath, "section", "show", "1")
	if !strings.Contains(out, "thèse") && !strings.Contains(out, "sédimentation") {
		t.Fatalf("accepted prompt not in body: %q", out)
	}

	out = mustRunCLI(t, configPath, "history", "list", projectID)
	if !strings.Contains(out, "transfert") && !strings.Contains(out, "avant") {
		t.Fatalf("expected transfer snapshots in history: %q", out)
	}
}

func TestCLISuggestPreviewWithoutAI(t *testing.T) {
	configPath := writeCLIConfig(t)

	out := mustRunCLI(t, configPath, "project", "create", "Essai court")
	projectID := createdProjectID(t, out)
	mustRunCLI(t, configPath, "section", "add", projectID, "Partie")

	out = mustRunCLI(t, configPath, "suggest", "1")
	if !strings.Contains(out, "content_hints") {
		t.Fatalf("expected local content hints for missing thesis: %q", out)
	}

	out = mustRunCLI(t, configPath, "suggest", "1", "--ai")
	if !strings.Contains(out, "No AI provider configured") {
		t.Fatalf("expected provider warning: %q", out)
	}
}

func TestCLIScoreCommand(t *testing.T) {
	configPath := writeCLIConfig(t)

	out := mustRunCLI(t, configPath, "project", "create", "Essai métrique")
	projectID := createdProjectID(t, out)
	mustRunCLI(t, configPath, "section", "add", projectID, "Partie")
	mustRunCLI(t, configPath, "section", "edit", "1", "--body",
		"Les réseaux distribuent la charge. Cependant, les réseaux centralisés concentrent la charge. "+
			"Ainsi, la distribution améliore la robustesse des réseaux face aux pannes individuelles.")

	out = mustRunCLI(t, configPath, "score", "1")
	if !strings.Contains(out, "Coherence:") || !strings.Contains(out, "Density:") {
		t.Fatalf("unexpected score output: %q", out)
	}
}

func TestCLIProfileShowAndSet(t *testing.T) {
	configPath := writeCLIConfig(t)

	out := mustRunCLI(t, configPath, "profile", "show")
	if !strings.Contains(out, "Standard") {
		t.Fatalf("expected default profile style: %q", out)
	}

	mustRunCLI(t, configPath, "profile", "set", "--style", "Crésus-Nakamoto", "--length", "2000")
	out = mustRunCLI(t, configPath, "profile", "show")
	if !strings.Contains(out, "Crésus-Nakamoto") || !strings.Contains(out, "2000") {
		t.Fatalf("profile set not persisted: %q", out)
	}

	if _, _, err := runCLI(t, configPath, "profile", "set", "--style", "flamboyant"); err == nil {
		t.Fatal("expected unknown style to fail")
	}
}

func TestCLIConfigInit(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "config.toml")

	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	cmd = newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
}
