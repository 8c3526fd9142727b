package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const startupAdvisoryLockID = 815472901

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL")

	if err := ensureSchema(db); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}

	clock := realClock{}
	ctx := context.Background()

	lockConn, acquired, err := acquireStartupLock(ctx, db)
	if err != nil {
		logger.Fatal("failed to acquire startup lock", zap.Error(err))
	}
	if acquired {
		seasonID, err := ensureActiveSeason(ctx, db, cfg, clock)
		if err != nil {
			logger.Fatal("failed to ensure active season", zap.Error(err))
		}
		logger.Info("startup lock acquired", zap.String("seasonId", seasonID))
		defer lockConn.Close()
	} else {
		logger.Info("startup lock held by another instance; skipping leader-only initialization")
		if lockConn != nil {
			_ = lockConn.Close()
		}
	}

	engine := NewEngine(db, cfg, clock, logger)

	if acquired {
		snapshotCron, err := startSnapshotJob(db, cfg, clock, logger)
		if err != nil {
			logger.Fatal("failed to start snapshot job", zap.Error(err))
		}
		defer snapshotCron.Stop()
	}

	mux := http.NewServeMux()
	registerRoutes(mux, db, engine, cfg, logger)

	logger.Info("listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func acquireStartupLock(ctx context.Context, db *sql.DB) (*sql.Conn, bool, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, false, err
	}
	var acquired bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, startupAdvisoryLockID).Scan(&acquired); err != nil {
		_ = conn.Close()
		return nil, false, err
	}
	if !acquired {
		_ = conn.Close()
		return nil, false, nil
	}
	return conn, true, nil
}
