package models

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"gorm.io/gorm"
)

/*
Column Mismatch Report Usage:

The report lists database columns that aren't accounted for as fields in the
corresponding Go model structs. Run it with:

	portfolio schema-report

Example output:
=== COLUMN MISMATCH REPORT ===
--- Table: projects ---
Found 1 columns not accounted for in model:
  - featured
--- Table: users ---
All columns are accounted for in the model.

=== SUMMARY ===
Total mismatched columns across all tables: 1
*/

// All returns every persisted model, parents before children.
func All() []any {
	return []any{
		&User{},
		&Project{},
		&Achievement{},
		&Comment{},
		&Like{},
		&Notification{},
		&ContactMessage{},
	}
}

// Migrate creates or alters tables, indexes and foreign keys for all models.
func Migrate(db *gorm.DB) error {
	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})
	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("error during models migration: %w", err)
	}
	return nil
}

// ColumnMismatchReport writes a report of database columns that aren't
// accounted for in Go models and returns the number of mismatches.
func ColumnMismatchReport(db *gorm.DB, w io.Writer) (int, error) {
	fmt.Fprintln(w, "=== COLUMN MISMATCH REPORT ===")

	stmt := &gorm.Statement{DB: db}
	tables := make(map[string]any)
	var names []string
	for _, model := range All() {
		if err := stmt.Parse(model); err != nil {
			return 0, fmt.Errorf("error parsing model %T: %w", model, err)
		}
		tables[stmt.Schema.Table] = model
		names = append(names, stmt.Schema.Table)
	}
	sort.Strings(names)

	totalMismatches := 0
	for _, tableName := range names {
		model := tables[tableName]
		fmt.Fprintf(w, "--- Table: %s ---\n", tableName)

		if !db.Migrator().HasTable(model) {
			fmt.Fprintln(w, "Table does not exist yet (will be created during migration)")
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return totalMismatches, fmt.Errorf("error getting columns for table %s: %w", tableName, err)
		}
		dbColumns := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			dbColumns = append(dbColumns, ct.Name())
		}

		mismatches := findColumnMismatches(dbColumns, getModelFields(model))
		if len(mismatches) > 0 {
			fmt.Fprintf(w, "Found %d columns not accounted for in model:\n", len(mismatches))
			for _, col := range mismatches {
				fmt.Fprintf(w, "  - %s\n", col)
			}
			totalMismatches += len(mismatches)
		} else {
			fmt.Fprintln(w, "All columns are accounted for in the model.")
		}
	}

	fmt.Fprintf(w, "\n=== SUMMARY ===\n")
	fmt.Fprintf(w, "Total mismatched columns across all tables: %d\n", totalMismatches)
	return totalMismatches, nil
}

// getModelFields extracts column names from a model's `db` tags using reflection
func getModelFields(model any) []string {
	var fields []string
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip embedded structs
		if field.Anonymous {
			continue
		}

		if column := extractColumnName(field); column != "" {
			fields = append(fields, column)
		}
	}

	return fields
}

// extractColumnName prefers an explicit GORM column tag and falls back to the db tag
func extractColumnName(field reflect.StructField) string {
	for _, part := range strings.Split(field.Tag.Get("gorm"), ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "column:") {
			return strings.TrimPrefix(part, "column:")
		}
	}
	if dbTag := field.Tag.Get("db"); dbTag != "" && dbTag != "-" {
		return dbTag
	}
	return ""
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}

	return mismatches
}
