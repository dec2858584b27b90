// Package source reads the games, results and factions tables from a
// spreadsheet, a directory of CSV files, a DuckDB database or a SQLite
// database, and decodes them into typed records.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ti-dashboard/ti-data/internal/model"
)

const (
	DefaultGamesTable    = "games"
	DefaultResultsTable  = "results"
	DefaultFactionsTable = "factions"
)

type Config struct {
	Path string
	// Sheet names for xlsx, file stems for a CSV directory, table names otherwise.
	GamesTable    string
	ResultsTable  string
	FactionsTable string
}

func (c Config) withDefaults() Config {
	if c.GamesTable == "" {
		c.GamesTable = DefaultGamesTable
	}
	if c.ResultsTable == "" {
		c.ResultsTable = DefaultResultsTable
	}
	if c.FactionsTable == "" {
		c.FactionsTable = DefaultFactionsTable
	}
	return c
}

type Source interface {
	Load(ctx context.Context) (model.Tables, error)
	Inventory(ctx context.Context) ([]TableInventory, error)
	Close() error
}

type Kind string

const (
	KindXLSX   Kind = "xlsx"
	KindCSVDir Kind = "csv"
	KindDuckDB Kind = "duckdb"
	KindSQLite Kind = "sqlite"
)

// DetectKind picks a backend from the path: a directory holds CSV files,
// otherwise the file extension decides.
func DetectKind(path string) (Kind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat source %s: %w", path, err)
	}
	if info.IsDir() {
		return KindCSVDir, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return KindXLSX, nil
	case ".duckdb", ".ddb":
		return KindDuckDB, nil
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite, nil
	}
	return "", fmt.Errorf("unsupported source %s: want .xlsx, .duckdb, .db/.sqlite or a CSV directory", path)
}

func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Source, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("source path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	kind, err := DetectKind(cfg.Path)
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("source", cfg.Path), zap.String("kind", string(kind)))

	switch kind {
	case KindSQLite:
		return openSQLite(ctx, cfg, logger)
	default:
		return openDuckDB(ctx, cfg, kind, logger)
	}
}

// Load opens the source, reads all three tables and closes it again.
func Load(ctx context.Context, cfg Config, logger *zap.Logger) (model.Tables, error) {
	src, err := Open(ctx, cfg, logger)
	if err != nil {
		return model.Tables{}, err
	}
	defer src.Close()
	return src.Load(ctx)
}

// Inspect opens the source and returns the inventory of its three tables.
func Inspect(ctx context.Context, cfg Config, logger *zap.Logger) ([]TableInventory, error) {
	src, err := Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.Inventory(ctx)
}

// sqlSource reads each table with SELECT * FROM <relation>, where relation is
// a table name or a DuckDB table function.
type sqlSource struct {
	db       *sql.DB
	cfg      Config
	logger   *zap.Logger
	relation func(table string) string
}

func (s *sqlSource) Load(ctx context.Context) (model.Tables, error) {
	games, err := s.read(ctx, s.cfg.GamesTable, gamesColumns)
	if err != nil {
		return model.Tables{}, err
	}
	results, err := s.read(ctx, s.cfg.ResultsTable, resultsColumns)
	if err != nil {
		return model.Tables{}, err
	}
	factions, err := s.read(ctx, s.cfg.FactionsTable, factionsColumns)
	if err != nil {
		return model.Tables{}, err
	}

	var out model.Tables
	if out.Games, err = decodeGames(games); err != nil {
		return model.Tables{}, err
	}
	if out.Results, err = decodeResults(results); err != nil {
		return model.Tables{}, err
	}
	if out.Factions, err = decodeFactions(factions); err != nil {
		return model.Tables{}, err
	}

	s.logger.Info("loaded source tables",
		zap.Int("games", len(out.Games)),
		zap.Int("results", len(out.Results)),
		zap.Int("factions", len(out.Factions)),
	)
	return out, nil
}

func (s *sqlSource) read(ctx context.Context, name string, spec columnSpec) (*table, error) {
	query := "SELECT * FROM " + s.relation(name)
	s.logger.Debug("reading table", zap.String("table", name), zap.String("query", query))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	defer rows.Close()
	return scanTable(rows, spec.logical, spec)
}

func (s *sqlSource) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
