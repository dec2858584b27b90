package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ti-dashboard/ti-data/internal/store"
)

const fixture = `
CREATE TABLE games (game_id INTEGER, game_name TEXT, start_date TEXT, end_date TEXT, rounds INTEGER, game_max_victory_points INTEGER, win_description TEXT);
CREATE TABLE results (game_id INTEGER, player_name TEXT, faction_short_name TEXT, victory_points INTEGER, starting_position INTEGER);
CREATE TABLE factions (faction_short_name TEXT, faction_full_name TEXT);
INSERT INTO games VALUES (1, 'Opening Night', '2024-01-01', '2024-01-02', 5, 10, 'Objectives');
INSERT INTO games VALUES (2, 'Rematch', '2024-02-01', '2024-02-03', 6, 10, NULL);
INSERT INTO results VALUES (1, 'Alice', 'Jol', 10, 1);
INSERT INTO results VALUES (1, 'Bob', 'Sol', 7, 2);
INSERT INTO results VALUES (2, 'Bob', 'Jol', 10, 1);
INSERT INTO factions VALUES ('Jol', 'The Universities of Jol-Nar');
INSERT INTO factions VALUES ('Sol', 'The Federation of Sol')
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ti.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()
	for _, stmt := range strings.Split(fixture, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return path
}

func TestRun_WritesDocumentAndExtras(t *testing.T) {
	out := t.TempDir()
	f := flags{
		source:       writeFixture(t),
		out:          filepath.Join(out, "public", "ti_data.json"),
		grainJSON:    filepath.Join(out, "grain.json"),
		grainParquet: filepath.Join(out, "grain.parquet"),
		report:       filepath.Join(out, "report.json"),
		statsOut:     filepath.Join(out, "stats.json"),
		careersOut:   filepath.Join(out, "careers.json"),
	}
	if err := run(context.Background(), f, zap.NewNop()); err != nil {
		t.Fatalf("run: %v", err)
	}

	st := store.NewJSONStore("")
	doc, err := st.ReadDocument(f.out)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if len(doc.Games) != 2 || len(doc.Players) != 2 || len(doc.Factions) != 2 {
		t.Errorf("document = %d games, %d players, %d factions", len(doc.Games), len(doc.Players), len(doc.Factions))
	}
	for _, p := range []string{f.grainJSON, f.grainParquet, f.report, f.statsOut, f.careersOut} {
		if !st.Exists(p) {
			t.Errorf("%s not written", filepath.Base(p))
		}
	}
}

func TestRun_ConfigFileAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "ti.yaml")
	body := "source:\n  path: " + writeFixture(t) + "\noutput:\n  document: " + filepath.Join(dir, "from-config.json") + "\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	flagOut := filepath.Join(dir, "from-flag.json")
	if err := run(context.Background(), flags{configPath: cfgPath, out: flagOut}, zap.NewNop()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(flagOut); err != nil {
		t.Errorf("flag output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "from-config.json")); !os.IsNotExist(err) {
		t.Errorf("config output written despite -out flag")
	}
}

func TestRun_FailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "ti_data.json")
	err := run(context.Background(), flags{source: filepath.Join(dir, "missing.sqlite"), out: out}, zap.NewNop())
	if err == nil {
		t.Fatal("run succeeded with missing source")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("document written after a failed run")
	}
}
