package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ti.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Path != DefaultSourcePath {
		t.Errorf("Source.Path = %q, want %q", cfg.Source.Path, DefaultSourcePath)
	}
	if cfg.Output.Document != DefaultDocumentPath {
		t.Errorf("Output.Document = %q, want %q", cfg.Output.Document, DefaultDocumentPath)
	}
	if cfg.Source.GamesTable != "games" || cfg.Source.ResultsTable != "results" || cfg.Source.FactionsTable != "factions" {
		t.Errorf("table names = %+v", cfg.Source)
	}
	if cfg.Icons.Overrides["Jol"] != "Jol Nar" || cfg.Icons.Overrides["Naaz"] != "Naaz-Rokha" {
		t.Errorf("default overrides = %v", cfg.Icons.Overrides)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
source:
  path: data/league.sqlite
  results_table: scores
output:
  grain_parquet: out/grain.parquet
icons:
  base_path: /static/icons/
  overrides:
    Mahact: Mahact Gene-Sorcerers
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Path != "data/league.sqlite" || cfg.Source.ResultsTable != "scores" {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Source.GamesTable != "games" {
		t.Errorf("GamesTable = %q, want default kept", cfg.Source.GamesTable)
	}
	if cfg.Output.Document != DefaultDocumentPath || cfg.Output.GrainParquet != "out/grain.parquet" {
		t.Errorf("output = %+v", cfg.Output)
	}
	if cfg.Icons.Overrides["Jol"] != "Jol Nar" || cfg.Icons.Overrides["Mahact"] != "Mahact Gene-Sorcerers" {
		t.Errorf("overrides not merged: %v", cfg.Icons.Overrides)
	}

	opts := cfg.SummaryOptions()
	if got := opts.IconPath("Mahact"); got != "/static/icons/Mahact Gene-Sorcerers.png" {
		t.Errorf("IconPath = %q", got)
	}
	sc := cfg.SourceConfig()
	if sc.Path != "data/league.sqlite" || sc.ResultsTable != "scores" {
		t.Errorf("SourceConfig = %+v", sc)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "source: [", "failed to parse config"},
		{"blank source", "source:\n  path: \"\"\n", "source.path is required"},
		{"blank document", "output:\n  document: \"\"\n", "output.document is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Load error = %v, want containing %q", err, tc.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestSummaryOptions_DoesNotShareMap(t *testing.T) {
	cfg := Default()
	opts := cfg.SummaryOptions()
	opts.IconOverrides["Jol"] = "changed"
	if cfg.Icons.Overrides["Jol"] != "Jol Nar" {
		t.Error("SummaryOptions shares the override map with the config")
	}
}

func TestLoadEnv_Defaults(t *testing.T) {
	t.Setenv("TI_LOG_LEVEL", "")
	os.Unsetenv("TI_LOG_LEVEL")
	t.Setenv("TI_LOG_DEV", "false")
	t.Setenv("TI_MCP_API_KEY", "secret")

	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if e.LogLevel != "info" || e.LogDev {
		t.Errorf("env = %+v, want info level, production logger", e)
	}
	if e.APIKey != "secret" {
		t.Errorf("APIKey = %q", e.APIKey)
	}
}

func TestParseEnv_Error(t *testing.T) {
	t.Setenv("TI_LOG_DEV", "not-a-bool")
	_, err := LoadEnv()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}
