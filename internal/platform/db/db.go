package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jpillora/backoff"

	"emargement-backend/internal/platform/config"
	"emargement-backend/internal/platform/logging"
)

const (
	driverName     = "mysql"
	connectRetries = 5
)

// DSN: captured_at のミリ秒を落とさないよう parseTime + UTC 固定
func DSN(c config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = c.Username
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Timeout = 3 * time.Second
	mc.ReadTimeout = 5 * time.Second
	mc.WriteTimeout = 5 * time.Second
	return mc.FormatDSN()
}

func Connect(ctx context.Context, c config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(driverName, DSN(c))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare connection: %w", err)
	}

	// 起動直後はDBコンテナが未準備のことがあるので数回だけ待つ
	b := &backoff.Backoff{
		Min:    500 * time.Millisecond,
		Max:    10 * time.Second,
		Factor: 2,
		Jitter: true,
	}
	for attempt := 1; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		if attempt >= connectRetries {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		d := b.Duration()
		logging.Logger.WithError(err).Warnf("database not ready (attempt %d/%d), retrying in %s", attempt, connectRetries, d)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(d):
		}
	}

	// 接続プール（合算がMySQLの max_connections を超えないよう配分する）
	db.SetMaxOpenConns(80)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// IsDuplicateKey: MySQL 1062 (ER_DUP_ENTRY)
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}
