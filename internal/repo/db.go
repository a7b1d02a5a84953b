// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and schema migrations.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/stanbotdev/stanbot/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
// foreign_keys=ON is load-bearing: all cascade deletes in the schema rely
// on the database enforcing FK constraints.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if the parent directory does not exist (instead of the
	// opaque sqlite "out of memory (14)" error).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	// PRAGMAs go in the DSN so every pooled connection gets them.
	dsn := path + "?_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Pool: each unit of consistency checks out its own connection.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for every domain model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Group{},
		&domain.Member{},
		&domain.Tag{},
		&domain.GroupAlias{},
		&domain.MemberAlias{},
		&domain.TagAlias{},
		&domain.Link{},
		&domain.LinkMember{},
		&domain.LinkTag{},
		&domain.Account{},
		&domain.Subscription{},
		&domain.Channel{},
		&domain.User{},
		&domain.Moderator{},
		&domain.CustomCommand{},
	)
}
