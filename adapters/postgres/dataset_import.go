package postgres

import (
	"context"
	"fmt"
	"strings"

	"cardiorisk/domain/clinical"
	"cardiorisk/domain/dataset"
	"cardiorisk/internal"
	"cardiorisk/internal/errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// importBatchSize bounds the rows sent in one multi-row INSERT
const importBatchSize = 100

func fromRow(r dataset.Row) heartRow {
	rec := r.Record
	return heartRow{
		Age: rec.Age, Sex: rec.Sex, CP: rec.CP, TrestBPS: rec.TrestBPS, Chol: rec.Chol,
		FBS: rec.FBS, RestECG: rec.RestECG, Thalach: rec.Thalach, Exang: rec.Exang,
		Oldpeak: rec.Oldpeak, Slope: rec.Slope, CA: rec.CA, Thal: rec.Thal,
		Target: r.Target,
	}
}

// DatasetImporter seeds the dataset table that the read-only repository serves.
// It is used by the migrate command, never by the servers.
type DatasetImporter struct {
	db     *sqlx.DB
	table  string
	logger *internal.Logger
}

// NewDatasetImporter creates an importer for table
func NewDatasetImporter(db *sqlx.DB, table string) *DatasetImporter {
	return &DatasetImporter{db: db, table: table, logger: internal.DefaultLogger.Named("DatasetImporter")}
}

// Import creates the table when needed and inserts every row in one transaction.
// An already populated table is an error unless replace is set, in which case
// its rows are removed first.
func (i *DatasetImporter) Import(ctx context.Context, ds *dataset.HeartDataset, replace bool) (int, error) {
	tx, err := i.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.DatabaseError("failed to begin import", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createTableQuery(i.table)); err != nil {
		return 0, errors.DatabaseError("failed to create dataset table", err)
	}

	if replace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+quoteTable(i.table)); err != nil {
			return 0, errors.DatabaseError("failed to clear dataset table", err)
		}
	} else {
		var existing int
		if err := tx.GetContext(ctx, &existing, "SELECT count(*) FROM "+quoteTable(i.table)); err != nil {
			return 0, errors.DatabaseError("failed to count dataset rows", err)
		}
		if existing > 0 {
			return 0, errors.ValidationError(fmt.Sprintf("table %s already holds %d rows; use -replace to overwrite", i.table, existing))
		}
	}

	query := insertQuery(i.table)
	inserted := 0
	for start := 0; start < len(ds.Rows); start += importBatchSize {
		end := start + importBatchSize
		if end > len(ds.Rows) {
			end = len(ds.Rows)
		}
		batch := make([]heartRow, 0, end-start)
		for _, r := range ds.Rows[start:end] {
			batch = append(batch, fromRow(r))
		}
		if _, err := tx.NamedExecContext(ctx, query, batch); err != nil {
			return inserted, errors.DatabaseError(fmt.Sprintf("failed to insert rows %d-%d", start, end-1), err)
		}
		inserted += len(batch)
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.DatabaseError("failed to commit import", err)
	}
	i.logger.Info("imported %d records from %s into %s", inserted, ds.Source, i.table)
	return inserted, nil
}

// createTableQuery stores features as double precision and the target as an integer
func createTableQuery(table string) string {
	cols := make([]string, 0, clinical.NumFeatures+1)
	for _, c := range clinical.DatasetColumns() {
		typ := "double precision NOT NULL"
		if c == clinical.Target {
			typ = "integer NOT NULL CHECK (target IN (0, 1))"
		}
		cols = append(cols, pq.QuoteIdentifier(string(c))+" "+typ)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quoteTable(table), strings.Join(cols, ",\n\t"))
}

func insertQuery(table string) string {
	cols := clinical.DatasetColumns()
	quoted := make([]string, len(cols))
	named := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pq.QuoteIdentifier(string(c))
		named[i] = ":" + string(c)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteTable(table), strings.Join(quoted, ", "), strings.Join(named, ", "))
}
