package source

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fixtureSchema = `
CREATE TABLE games (
	game_id INTEGER, game_name TEXT, start_date TEXT, end_date TEXT,
	rounds INTEGER, game_max_victory_points INTEGER, win_description TEXT
);
CREATE TABLE results (
	game_id INTEGER, player_name TEXT, faction_short_name TEXT,
	victory_points INTEGER, starting_position INTEGER
);
CREATE TABLE factions (faction_short_name TEXT, faction_full_name TEXT);

INSERT INTO games VALUES (1, 'Opening Night', '2024-01-01', '2024-01-02', 5, 14, 'Custodians rush');
INSERT INTO games VALUES (2, 'Rematch', NULL, NULL, NULL, 10, NULL);
INSERT INTO results VALUES (1, 'Alice', 'Jol', 14, 1);
INSERT INTO results VALUES (1, 'Bob', NULL, 10, NULL);
INSERT INTO results VALUES (2, 'Alice', 'Sol', NULL, NULL);
INSERT INTO factions VALUES ('Jol', 'The Universities of Jol-Nar');
INSERT INTO factions VALUES ('Sol', 'The Federation of Sol');
`

func writeSQLiteFixture(t *testing.T, statements string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ti.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()
	for _, stmt := range strings.Split(statements, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return path
}

func TestDetectKind(t *testing.T) {
	dir := t.TempDir()
	files := map[string]Kind{
		"raw_data.xlsx": KindXLSX,
		"ti.duckdb":     KindDuckDB,
		"ti.db":         KindSQLite,
		"ti.SQLITE3":    KindSQLite,
	}
	for name, want := range files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := DetectKind(p)
		if err != nil || got != want {
			t.Errorf("DetectKind(%s) = %q, %v; want %q", name, got, err, want)
		}
	}

	if got, err := DetectKind(dir); err != nil || got != KindCSVDir {
		t.Errorf("DetectKind(dir) = %q, %v; want csv", got, err)
	}

	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := DetectKind(txt); err == nil {
		t.Error("DetectKind(.txt) err = nil, want unsupported")
	}
	if _, err := DetectKind(filepath.Join(dir, "missing.xlsx")); err == nil {
		t.Error("DetectKind(missing) err = nil, want stat error")
	}
}

func TestLoad_SQLite(t *testing.T) {
	path := writeSQLiteFixture(t, fixtureSchema)

	tables, err := Load(context.Background(), Config{Path: path}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tables.Games) != 2 || len(tables.Results) != 3 || len(tables.Factions) != 2 {
		t.Fatalf("loaded %d/%d/%d rows, want 2/3/2", len(tables.Games), len(tables.Results), len(tables.Factions))
	}

	g := tables.Games[0]
	if g.GameID != 1 || g.GameName != "Opening Night" {
		t.Errorf("game 0 = %+v", g)
	}
	if g.StartDate == nil || g.StartDate.String() != "2024-01-01" {
		t.Errorf("start_date = %v, want 2024-01-01", g.StartDate)
	}
	if g.Rounds == nil || *g.Rounds != 5 || g.MaxVictoryPoints == nil || *g.MaxVictoryPoints != 14 {
		t.Errorf("rounds/max = %v/%v", g.Rounds, g.MaxVictoryPoints)
	}
	if g.WinDescription == nil || *g.WinDescription != "Custodians rush" {
		t.Errorf("win_description = %v", g.WinDescription)
	}

	g2 := tables.Games[1]
	if g2.StartDate != nil || g2.EndDate != nil || g2.Rounds != nil || g2.WinDescription != nil {
		t.Errorf("game 2 optional fields should be nil: %+v", g2)
	}

	bob := tables.Results[1]
	if bob.PlayerName != "Bob" || bob.FactionShortName != nil || bob.VictoryPoints == nil || *bob.VictoryPoints != 10 {
		t.Errorf("Bob result = %+v", bob)
	}
	if tables.Results[2].VictoryPoints != nil {
		t.Errorf("Alice game 2 victory_points = %d, want nil", *tables.Results[2].VictoryPoints)
	}
	if f := tables.Factions[0]; f.ShortName != "Jol" || f.FullName == nil {
		t.Errorf("faction 0 = %+v", f)
	}
}

func TestLoad_SQLiteCustomTableNames(t *testing.T) {
	stmts := strings.NewReplacer(
		"TABLE games", "TABLE ti_games", "INTO games", "INTO ti_games",
	).Replace(fixtureSchema)
	path := writeSQLiteFixture(t, stmts)

	if _, err := Load(context.Background(), Config{Path: path}, nil); err == nil {
		t.Fatal("Load with default names err = nil, want missing table error")
	}
	tables, err := Load(context.Background(), Config{Path: path, GamesTable: "ti_games"}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tables.Games) != 2 {
		t.Errorf("games = %d, want 2", len(tables.Games))
	}
}

func TestLoad_MissingRequiredColumn(t *testing.T) {
	path := writeSQLiteFixture(t, `
CREATE TABLE games (game_id INTEGER, game_name TEXT, start_date TEXT, end_date TEXT, rounds INTEGER);
CREATE TABLE results (game_id INTEGER, player_name TEXT, faction_short_name TEXT, victory_points INTEGER);
CREATE TABLE factions (faction_short_name TEXT, faction_full_name TEXT);
`)
	_, err := Load(context.Background(), Config{Path: path}, nil)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
	if se.Table != "games" || se.Column != "game_max_victory_points" {
		t.Errorf("SchemaError = %+v, want games.game_max_victory_points", se)
	}
}

func TestLoad_ColumnNamesCaseInsensitive(t *testing.T) {
	path := writeSQLiteFixture(t, `
CREATE TABLE games ("Game_ID" INTEGER, "GAME_NAME" TEXT, "Start_Date" TEXT, "End_Date" TEXT, "Rounds" INTEGER, "Game_Max_Victory_Points" INTEGER);
CREATE TABLE results ("Game_ID" INTEGER, "Player_Name" TEXT, "Faction_Short_Name" TEXT, "Victory_Points" INTEGER);
CREATE TABLE factions ("Faction_Short_Name" TEXT, "Faction_Full_Name" TEXT);
INSERT INTO games VALUES (7, 'Caps', NULL, NULL, NULL, 10);
`)
	tables, err := Load(context.Background(), Config{Path: path}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tables.Games) != 1 || tables.Games[0].GameID != 7 {
		t.Errorf("games = %+v", tables.Games)
	}
}

func TestLoad_FractionalPointsRejected(t *testing.T) {
	path := writeSQLiteFixture(t, `
CREATE TABLE games (game_id INTEGER, game_name TEXT, start_date TEXT, end_date TEXT, rounds INTEGER, game_max_victory_points INTEGER);
CREATE TABLE results (game_id INTEGER, player_name TEXT, faction_short_name TEXT, victory_points REAL);
CREATE TABLE factions (faction_short_name TEXT, faction_full_name TEXT);
INSERT INTO results VALUES (1, 'Alice', NULL, 9);
INSERT INTO results VALUES (1, 'Bob', NULL, 7.5);
`)
	_, err := Load(context.Background(), Config{Path: path}, nil)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
	if se.Table != "results" || se.Column != "victory_points" || se.Row != 2 {
		t.Errorf("SchemaError = %+v, want results.victory_points row 2", se)
	}
}

func TestLoad_BlankRowsSkipped(t *testing.T) {
	path := writeSQLiteFixture(t, fixtureSchema+`;
INSERT INTO results VALUES (NULL, NULL, NULL, NULL, NULL);
INSERT INTO factions VALUES ('', NULL);
`)
	tables, err := Load(context.Background(), Config{Path: path}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tables.Results) != 3 || len(tables.Factions) != 2 {
		t.Errorf("results/factions = %d/%d, want 3/2", len(tables.Results), len(tables.Factions))
	}
}

func TestLoad_NullGameIDRejected(t *testing.T) {
	path := writeSQLiteFixture(t, fixtureSchema+`;
INSERT INTO results VALUES (NULL, 'Carol', NULL, 4, NULL);
`)
	_, err := Load(context.Background(), Config{Path: path}, nil)
	var se *SchemaError
	if !errors.As(err, &se) || se.Column != "game_id" || se.Row != 4 {
		t.Fatalf("err = %v, want results.game_id row 4", err)
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), Config{}, nil); err == nil {
		t.Error("Open with empty path err = nil")
	}
}

func TestInspect_ReportsColumnsAndGaps(t *testing.T) {
	path := writeSQLiteFixture(t, fixtureSchema+"\nALTER TABLE factions ADD COLUMN notes TEXT;")

	inv, err := Inspect(context.Background(), Config{Path: path}, nil)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(inv) != 3 {
		t.Fatalf("tables = %d, want 3", len(inv))
	}
	games := inv[0]
	if games.Name != "games" || games.Rows != 2 || len(games.MissingColumns) != 0 {
		t.Errorf("games = %+v", games)
	}
	if games.Columns[0].Name != "game_id" || games.Columns[0].Types[0] != "integer" {
		t.Errorf("first games column = %+v", games.Columns[0])
	}
	var rounds Column
	for _, c := range games.Columns {
		if c.Name == "rounds" {
			rounds = c
		}
	}
	if rounds.Nulls != 1 || !rounds.Expected {
		t.Errorf("rounds column = %+v, want 1 null and expected", rounds)
	}

	factions := inv[2]
	last := factions.Columns[len(factions.Columns)-1]
	if last.Name != "notes" || last.Expected {
		t.Errorf("extra column = %+v, want unexpected notes", last)
	}
}

func TestInspect_MissingColumnIsNotFatal(t *testing.T) {
	path := writeSQLiteFixture(t, `
CREATE TABLE games (game_id INTEGER, game_name TEXT);
CREATE TABLE results (game_id INTEGER, player_name TEXT, faction_short_name TEXT, victory_points INTEGER);
CREATE TABLE factions (faction_short_name TEXT, faction_full_name TEXT);
`)
	inv, err := Inspect(context.Background(), Config{Path: path}, nil)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	want := "start_date,end_date,rounds,game_max_victory_points"
	if got := strings.Join(inv[0].MissingColumns, ","); got != want {
		t.Errorf("missing = %s, want %s", got, want)
	}
	if inv[1].Rows != 0 || len(inv[1].MissingColumns) != 0 {
		t.Errorf("results = %+v", inv[1])
	}
}
