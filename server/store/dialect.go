package store

import (
	"embed"
	"fmt"
	"strings"

	"github.com/NelaStaffing/hardware-store-bot/server/store/migrations"
)

// dialect captures the SQL differences between the supported databases.
type dialect struct {
	name       string
	driver     string
	migrations embed.FS
	dir        string
}

var (
	sqliteDialect   = dialect{name: "sqlite", driver: "sqlite", migrations: migrations.SQLite, dir: "sqlite"}
	postgresDialect = dialect{name: "postgres", driver: "pgx", migrations: migrations.Postgres, dir: "postgres"}
	mysqlDialect    = dialect{name: "mysql", driver: "mysql", migrations: migrations.MySQL, dir: "mysql"}
)

func (d dialect) ph(n int) string {
	if d.name == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (d dialect) phs(from, count int) string {
	out := make([]string, count)
	for i := range out {
		out[i] = d.ph(from + i)
	}
	return strings.Join(out, ", ")
}

// ident quotes a column name so that its spelling is preserved where the
// database distinguishes case.
func (d dialect) ident(col string) string {
	if d.name == "mysql" {
		return "`" + strings.ReplaceAll(col, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(col, `"`, `""`) + `"`
}

// equal is a case-sensitive comparison.
func (d dialect) equal(col string, n int) string {
	if d.name == "mysql" {
		return fmt.Sprintf("BINARY %s = %s", d.ident(col), d.ph(n))
	}
	return fmt.Sprintf("%s = %s", d.ident(col), d.ph(n))
}

// ilike is a case-insensitive LIKE.
func (d dialect) ilike(col string, n int) string {
	switch d.name {
	case "postgres":
		return fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, d.ident(col), d.ph(n))
	case "mysql":
		// Backslash is already MySQL's LIKE escape.
		return fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", d.ident(col), d.ph(n))
	default:
		// SQLite LIKE already ignores ASCII case.
		return fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, d.ident(col), d.ph(n))
	}
}

func (d dialect) upsertProduct() string {
	cols := "sku, name, price, aisle, description, url"
	if d.name == "mysql" {
		return `INSERT INTO products (` + cols + `) VALUES (` + d.phs(1, 6) + `)
			ON DUPLICATE KEY UPDATE name = VALUES(name), price = VALUES(price), aisle = VALUES(aisle),
				description = VALUES(description), url = VALUES(url)`
	}
	return `INSERT INTO products (` + cols + `) VALUES (` + d.phs(1, 6) + `)
		ON CONFLICT (sku) DO UPDATE SET name = excluded.name, price = excluded.price, aisle = excluded.aisle,
			description = excluded.description, url = excluded.url`
}

func (d dialect) insertSession() string {
	if d.name == "mysql" {
		return `INSERT IGNORE INTO chat_sessions (session_id, created_at) VALUES (?, ?)`
	}
	return `INSERT INTO chat_sessions (session_id, created_at) VALUES (` + d.phs(1, 2) + `)
		ON CONFLICT (session_id) DO NOTHING`
}

// statements splits a migration file into individual statements.
func (d dialect) statements() ([]string, error) {
	data, err := d.migrations.ReadFile(d.dir + "/001_init.sql")
	if err != nil {
		return nil, fmt.Errorf("read migration: %w", err)
	}
	var out []string
	for _, stmt := range strings.Split(string(data), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
