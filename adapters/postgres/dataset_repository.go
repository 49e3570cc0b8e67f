package postgres

import (
	"context"
	"fmt"
	"strings"

	"cardiorisk/domain/clinical"
	"cardiorisk/domain/dataset"
	"cardiorisk/internal"
	"cardiorisk/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// heartRow mirrors one row of the dataset table
type heartRow struct {
	Age      float64 `db:"age"`
	Sex      float64 `db:"sex"`
	CP       float64 `db:"cp"`
	TrestBPS float64 `db:"trestbps"`
	Chol     float64 `db:"chol"`
	FBS      float64 `db:"fbs"`
	RestECG  float64 `db:"restecg"`
	Thalach  float64 `db:"thalach"`
	Exang    float64 `db:"exang"`
	Oldpeak  float64 `db:"oldpeak"`
	Slope    float64 `db:"slope"`
	CA       float64 `db:"ca"`
	Thal     float64 `db:"thal"`
	Target   int     `db:"target"`
}

func (h heartRow) toRow() dataset.Row {
	return dataset.Row{
		Record: clinical.Record{
			Age: h.Age, Sex: h.Sex, CP: h.CP, TrestBPS: h.TrestBPS, Chol: h.Chol,
			FBS: h.FBS, RestECG: h.RestECG, Thalach: h.Thalach, Exang: h.Exang,
			Oldpeak: h.Oldpeak, Slope: h.Slope, CA: h.CA, Thal: h.Thal,
		},
		Target: h.Target,
	}
}

// datasetRepository reads the clinical dataset from a SQL table. It never writes.
// The queries run on Postgres and on SQLite.
type datasetRepository struct {
	db     *sqlx.DB
	table  string
	logger *internal.Logger
}

// NewDatasetRepository creates a read-only repository over table
func NewDatasetRepository(db *sqlx.DB, table string) ports.DatasetRepository {
	return &datasetRepository{db: db, table: table, logger: internal.DefaultLogger.Named("DatasetRepository")}
}

// Describe names the driver and table
func (r *datasetRepository) Describe() string {
	return r.driver() + ":" + r.table
}

func (r *datasetRepository) driver() string {
	if name := r.db.DriverName(); name != "" {
		return name
	}
	return "postgres"
}

// Load selects every row in physical table order
func (r *datasetRepository) Load(ctx context.Context) (*dataset.HeartDataset, error) {
	query := selectQuery(r.table, physicalOrder(r.driver()))

	var rows []heartRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query dataset table %s: %w", r.table, err)
	}

	parsed := make([]dataset.Row, len(rows))
	for i, h := range rows {
		parsed[i] = h.toRow()
	}
	ds, err := dataset.New(r.Describe(), parsed)
	if err != nil {
		return nil, err
	}
	r.logger.Info("loaded %d records from %s", ds.RecordCount(), r.table)
	return ds, nil
}

// physicalOrder is the driver's hidden column that follows insertion order
func physicalOrder(driver string) string {
	if driver == "sqlite3" {
		return "rowid"
	}
	return "ctid"
}

// selectQuery lists the schema columns explicitly so extra table columns are ignored
func selectQuery(table, order string) string {
	cols := clinical.DatasetColumns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pq.QuoteIdentifier(string(c))
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(quoted, ", "), quoteTable(table), order)
}

// quoteTable quotes a possibly schema-qualified table name
func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}
