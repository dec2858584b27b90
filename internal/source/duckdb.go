package source

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
	"go.uber.org/zap"
)

func openDuckDB(ctx context.Context, cfg Config, kind Kind, logger *zap.Logger) (*sqlSource, error) {
	dsn := ""
	if kind == KindDuckDB {
		dsn = cfg.Path + "?access_mode=read_only"
	}
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	src := &sqlSource{db: db, cfg: cfg, logger: logger}
	switch kind {
	case KindXLSX:
		if err := loadExtension(ctx, db, "excel", logger); err != nil {
			db.Close()
			return nil, err
		}
		src.relation = func(sheet string) string {
			return fmt.Sprintf("read_xlsx(%s, sheet = %s, header = true)", quoteLiteral(cfg.Path), quoteLiteral(sheet))
		}
	case KindCSVDir:
		src.relation = func(stem string) string {
			return fmt.Sprintf("read_csv_auto(%s, header = true)", quoteLiteral(filepath.Join(cfg.Path, stem+".csv")))
		}
	default:
		src.relation = quoteIdent
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	return src, nil
}

func loadExtension(ctx context.Context, db *sql.DB, name string, logger *zap.Logger) error {
	logger.Debug("installing duckdb extension", zap.String("extension", name))
	if _, err := db.ExecContext(ctx, "INSTALL "+name+";"); err != nil {
		return fmt.Errorf("install %s extension: %w", name, err)
	}
	if _, err := db.ExecContext(ctx, "LOAD "+name+";"); err != nil {
		return fmt.Errorf("load %s extension: %w", name, err)
	}
	return nil
}
