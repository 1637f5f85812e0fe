package db

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"
	"text/template"

	"checkinbot/internal/config"

	"github.com/lib/pq"
)

// schemaNames are the identifiers a migration script may reference.
type schemaNames struct {
	Events            string
	Attendees         string
	EventsServerIndex string
}

func newSchemaNames(cfg config.DatabaseConfig) schemaNames {
	return schemaNames{
		Events:            pq.QuoteIdentifier(cfg.EventsTable),
		Attendees:         pq.QuoteIdentifier(cfg.AttendeesTable),
		EventsServerIndex: pq.QuoteIdentifier(cfg.EventsTable + "_server_idx"),
	}
}

// RenderMigration fills the configured table names into a migration script.
func RenderMigration(name, source string, cfg config.DatabaseConfig) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(source)
	if err != nil {
		return "", fmt.Errorf("error parsing migration %s: %w", name, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, newSchemaNames(cfg)); err != nil {
		return "", fmt.Errorf("error rendering migration %s: %w", name, err)
	}
	return sb.String(), nil
}

// Migrate runs every .sql script in fsys in file name order.
func (db *DB) Migrate(ctx context.Context, fsys fs.FS, cfg config.DatabaseConfig) error {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("error listing migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		source, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("error reading migration %s: %w", name, err)
		}
		sql, err := RenderMigration(name, string(source), cfg)
		if err != nil {
			return err
		}
		if _, err := db.Exec(ctx, sql); err != nil {
			return fmt.Errorf("error executing migration %s: %w", name, err)
		}
		log.Printf("Applied migration %s", name)
	}
	return nil
}
