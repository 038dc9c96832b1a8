// Package database opens the relational store the score queries run against.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/okian/scorestats/internal/config"
)

// Supported driver names, as registered with database/sql.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	defaultMySQLPort    = 3306
	defaultPostgresPort = 5432
)

// Open opens a connection pool for cfg and verifies it with a ping.
// The caller owns the returned *sql.DB and must Close it.
func Open(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	driver, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, driver, err)
	}
	return db, nil
}

// DSN returns the database/sql driver name and data source name for cfg.
// A non-empty cfg.DSN is used verbatim.
func DSN(cfg config.Database) (driver, dsn string, err error) {
	driver = normalizeDriver(cfg.Driver)
	if driver == "" {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
	if cfg.DSN != "" {
		return driver, cfg.DSN, nil
	}

	switch driver {
	case DriverMySQL:
		return driver, mysqlDSN(cfg), nil
	case DriverPostgres:
		return driver, postgresDSN(cfg), nil
	default:
		return driver, sqliteDSN(cfg), nil
	}
}

func normalizeDriver(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql", "mariadb":
		return DriverMySQL
	case "postgres", "postgresql", "pq":
		return DriverPostgres
	case "sqlite", "sqlite3":
		return DriverSQLite
	default:
		return ""
	}
}

func mysqlDSN(cfg config.Database) string {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(hostOrDefault(cfg.Host), strconv.Itoa(portOrDefault(cfg.Port, defaultMySQLPort)))
	c.DBName = cfg.Name
	if len(cfg.Params) > 0 {
		c.Params = make(map[string]string, len(cfg.Params))
		for k, v := range cfg.Params {
			c.Params[k] = v
		}
	}
	return c.FormatDSN()
}

func postgresDSN(cfg config.Database) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	parts := []string{
		"host=" + quoteValue(hostOrDefault(cfg.Host)),
		"port=" + strconv.Itoa(portOrDefault(cfg.Port, defaultPostgresPort)),
	}
	if cfg.User != "" {
		parts = append(parts, "user="+quoteValue(cfg.User))
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+quoteValue(cfg.Password))
	}
	parts = append(parts, "dbname="+quoteValue(cfg.Name), "sslmode="+quoteValue(sslmode))
	for _, k := range sortedKeys(cfg.Params) {
		parts = append(parts, k+"="+quoteValue(cfg.Params[k]))
	}
	return strings.Join(parts, " ")
}

func sqliteDSN(cfg config.Database) string {
	if len(cfg.Params) == 0 {
		return cfg.Name
	}
	q := url.Values{}
	for _, k := range sortedKeys(cfg.Params) {
		q.Add(k, cfg.Params[k])
	}
	sep := "?"
	if strings.Contains(cfg.Name, "?") {
		sep = "&"
	}
	return cfg.Name + sep + q.Encode()
}

// quoteValue quotes a libpq key/value parameter when it is empty or
// contains spaces, quotes or backslashes.
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func hostOrDefault(host string) string {
	if host == "" {
		return "localhost"
	}
	return host
}

func portOrDefault(port, fallback int) int {
	if port <= 0 {
		return fallback
	}
	return port
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
