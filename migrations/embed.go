// Package migrations embeds the SQL migration files so they can be applied by
// the goose programmatic API at server start, from the tourctl CLI and in
// tests, and reused as the schema section of SQL dumps.
package migrations

import (
	"bufio"
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"
)

// FS holds all *.sql migration files embedded at compile time.
// Pass this to goose.NewProvider instead of relying on a filesystem path at
// runtime.
//
//go:embed *.sql
var FS embed.FS

// Up applies every pending migration to db and logs each applied version.
func Up(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, FS)
	if err != nil {
		return fmt.Errorf("migrations.Up: create provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrations.Up: %w", err)
	}
	for _, r := range results {
		slog.InfoContext(ctx, "migration applied", "version", r.Source.Version, "duration_ms", r.Duration.Milliseconds())
	}
	return nil
}

// Schema returns the "+goose Up" sections of every migration, in version
// order, as one SQL script.
func Schema() (string, error) {
	names, err := fs.Glob(FS, "*.sql")
	if err != nil {
		return "", fmt.Errorf("migrations.Schema: %w", err)
	}
	var b strings.Builder
	for _, name := range names {
		f, err := FS.Open(name)
		if err != nil {
			return "", fmt.Errorf("migrations.Schema: open %s: %w", name, err)
		}
		up := false
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := sc.Text()
			switch strings.TrimSpace(line) {
			case "-- +goose Up":
				up = true
				continue
			case "-- +goose Down":
				up = false
				continue
			}
			if up {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
		f.Close()
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("migrations.Schema: read %s: %w", name, err)
		}
	}
	return strings.TrimSpace(b.String()) + "\n", nil
}
