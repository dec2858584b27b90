package source

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func openSQLite(ctx context.Context, cfg Config, logger *zap.Logger) (*sqlSource, error) {
	dsn := filepath.Clean(cfg.Path) + "?_pragma=query_only(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &sqlSource{db: db, cfg: cfg, logger: logger, relation: quoteIdent}, nil
}
