package repository

import "fmt"

// Dialect holds the SQL text for one database/sql driver. Upsert takes
// (id, title, description, price, author, created_at) where a nil created_at
// falls back to the store's clock; conflicting rows never rewrite created_at.
type Dialect struct {
	Name            string
	CreateTable     string
	Upsert          string
	SelectCreatedAt string
	SelectByID      string
	SelectAll       string
	DeleteByID      string
}

const selectColumns = "SELECT id, title, description, price, author, created_at FROM advertisement"

var Postgres = Dialect{
	Name: "postgres",
	CreateTable: `
		CREATE TABLE IF NOT EXISTS advertisement (
			id          UUID PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL,
			price       DOUBLE PRECISION NOT NULL CHECK (price >= 0),
			author      TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	Upsert: `
		INSERT INTO advertisement (id, title, description, price, author, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, now()))
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			author = EXCLUDED.author`,
	SelectCreatedAt: "SELECT created_at FROM advertisement WHERE id = $1",
	SelectByID:      selectColumns + " WHERE id = $1",
	SelectAll:       selectColumns + " ORDER BY created_at, id",
	DeleteByID:      "DELETE FROM advertisement WHERE id = $1",
}

var MySQL = Dialect{
	Name: "mysql",
	CreateTable: `
		CREATE TABLE IF NOT EXISTS advertisement (
			id          CHAR(36) NOT NULL PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL,
			price       DOUBLE NOT NULL,
			author      TEXT NOT NULL,
			created_at  DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
		)`,
	Upsert: `
		INSERT INTO advertisement (id, title, description, price, author, created_at)
		VALUES (?, ?, ?, ?, ?, COALESCE(?, UTC_TIMESTAMP(6)))
		ON DUPLICATE KEY UPDATE
			title = VALUES(title),
			description = VALUES(description),
			price = VALUES(price),
			author = VALUES(author)`,
	SelectCreatedAt: "SELECT created_at FROM advertisement WHERE id = ?",
	SelectByID:      selectColumns + " WHERE id = ?",
	SelectAll:       selectColumns + " ORDER BY created_at, id",
	DeleteByID:      "DELETE FROM advertisement WHERE id = ?",
}

var SQLite = Dialect{
	Name: "sqlite3",
	CreateTable: `
		CREATE TABLE IF NOT EXISTS advertisement (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL,
			price       REAL NOT NULL CHECK (price >= 0),
			author      TEXT NOT NULL,
			created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	Upsert: `
		INSERT INTO advertisement (id, title, description, price, author, created_at)
		VALUES (?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			price = excluded.price,
			author = excluded.author`,
	SelectCreatedAt: "SELECT created_at FROM advertisement WHERE id = ?",
	SelectByID:      selectColumns + " WHERE id = ?",
	SelectAll:       selectColumns + " ORDER BY created_at, id",
	DeleteByID:      "DELETE FROM advertisement WHERE id = ?",
}

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case Postgres.Name:
		return Postgres, nil
	case MySQL.Name:
		return MySQL, nil
	case SQLite.Name:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("no SQL dialect for driver %q", driver)
	}
}
