// Package loader executes generated statements against a database.
// Supported database types: sqlite, postgres, mysql.
package loader

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // mysql driver loaded here
	_ "github.com/lib/pq"              // postgres driver loaded here
	_ "modernc.org/sqlite"             // sqlite driver loaded here
)

const pingTimeout = 10 * time.Second

// DB executes statements one by one, without a transaction
type DB struct {
	db     *sql.DB
	dbType string
}

// DBType detects database type from the connection string
func DBType(conn string) (string, error) {
	if strings.HasPrefix(conn, "postgres://") || strings.HasPrefix(conn, "postgresql://") {
		return "postgres", nil
	}
	if strings.Contains(conn, "@tcp(") {
		return "mysql", nil
	}
	if strings.HasPrefix(conn, "file:") || strings.HasSuffix(conn, ".sqlite") || strings.HasSuffix(conn, ".db") {
		return "sqlite", nil
	}
	return "", fmt.Errorf("unsupported database type in connection string")
}

// New opens database for the connection string and checks it is reachable
func New(ctx context.Context, conn string) (*DB, error) {
	dbt, err := DBType(conn)
	if err != nil {
		return nil, fmt.Errorf("can't determine database type: %w", err)
	}

	db, err := sql.Open(dbt, conn)
	if err != nil {
		return nil, fmt.Errorf("can't open %s database: %w", dbt, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("can't ping %s database: %w", dbt, err)
	}
	log.Printf("[INFO] loading into %s database", dbt)
	return &DB{db: db, dbType: dbt}, nil
}

// Type returns database type, one of sqlite, postgres, mysql
func (d *DB) Type() string {
	return d.dbType
}

// Exec executes a single statement
func (d *DB) Exec(ctx context.Context, stmt string) error {
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("can't execute %q: %w", strings.TrimSpace(stmt), err)
	}
	return nil
}

// Close closes database
func (d *DB) Close() error {
	return d.db.Close()
}
