package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/diewo77/pcquote/internal/config"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 5
	connectDelay    = 2 * time.Second
)

var passwordPattern = regexp.MustCompile(`(password=)([^\s]+)`)

// Open connects to the configured database, retrying while it comes up.
func Open(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	dialector, target, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	logLevel := logger.Silent
	if cfg.Database.Debug {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel), TranslateError: true}

	log.WithFields(logrus.Fields{"driver": cfg.Database.Driver, "target": target}).Info("connecting to database")

	var conn *gorm.DB
	attempt := 0
	backoff := retry.WithMaxRetries(connectAttempts-1, retry.NewConstant(connectDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		c, openErr := gorm.Open(dialector, gormCfg)
		if openErr == nil {
			openErr = c.WithContext(ctx).Exec("SELECT 1").Error
		}
		if openErr != nil {
			log.WithError(openErr).Warnf("database connection attempt %d/%d failed", attempt, connectAttempts)
			return retry.RetryableError(openErr)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	return conn, nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, string, error) {
	switch cfg.Database.Driver {
	case "postgres":
		dsn := cfg.Database.DSN()
		return postgres.Open(dsn), passwordPattern.ReplaceAllString(dsn, `${1}***`), nil
	case "sqlite", "":
		path := cfg.SQLitePath()
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, "", fmt.Errorf("create data dir: %w", err)
			}
		}
		return sqlite.Open("file:" + path + "?_foreign_keys=on"), path, nil
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
