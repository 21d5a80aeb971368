package main

import (
	"errors"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func runMigrations() error {
	m, err := migrate.New("file://resources/migrations", "sqlite3://inhouse.db")
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Print("info: database is already up to date")
			return nil
		}

		return err
	}

	log.Print("info: database migrated")

	return nil
}
