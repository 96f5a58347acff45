package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	// PostgreSQL driver
	_ "github.com/lib/pq"
)

// NewPostgresDB initializes and configures the PostgreSQL connection pool.
// Returns the *sql.DB ready to use.
func NewPostgresDB(dataSourceName string) (*sql.DB, error) {

	// 1. Open the connection (does not touch the pool yet)
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB connection: %w", err)
	}

	// 2. Test the connection immediately.
	// Guarantees the credentials and the server are correct.
	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed initial DB ping: %w", err)
	}

	// 3. Connection pool tuning.
	// Adjust to the DB server limits and the expected traffic.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	log.Println("✅ PostgreSQL connection pool configured and ready.")

	return db, nil
}
