package postgres

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"cardiorisk/domain/clinical"
	"cardiorisk/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectQuery(t *testing.T) {
	q := selectQuery("heart_disease", physicalOrder("postgres"))
	assert.Contains(t, q, `FROM "heart_disease" ORDER BY ctid`)
	assert.Contains(t, selectQuery("heart_disease", physicalOrder("sqlite3")), "ORDER BY rowid")
	for _, c := range clinical.DatasetColumns() {
		assert.Contains(t, q, fmt.Sprintf("%q", string(c)))
	}

	assert.Equal(t, `"clinical"."heart"`, quoteTable("clinical.heart"))
	assert.Equal(t, `"bad""name"`, quoteTable(`bad"name`))
}

func TestHeartRowToRow(t *testing.T) {
	row := heartRow{Age: 63, Sex: 1, CP: 3, TrestBPS: 145, Chol: 233, FBS: 1, Thalach: 150, Oldpeak: 2.3, Thal: 1, Target: 1}.toRow()
	assert.Equal(t, []float64{63, 1, 3, 145, 233, 1, 0, 150, 0, 2.3, 0, 0, 1}, row.Record.Vector())
	assert.Equal(t, 1, row.Target)
}

func TestConnect_RequiresURL(t *testing.T) {
	_, err := Connect(context.Background(), "", 0)
	assert.Error(t, err)
}

func TestConnect_GivesUpAfterRetries(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := Connect(ctx, "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1", 1)
	assert.Error(t, err)
}

// TestLoad_Integration runs against a real database when TEST_DATABASE_URL is set
func TestLoad_Integration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Connect(ctx, url, 2)
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1) // temp tables are per connection

	table := fmt.Sprintf("heart_test_%d", time.Now().UnixNano())
	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE TEMP TABLE %s (
		age double precision, sex double precision, cp double precision, trestbps double precision, chol double precision, fbs double precision, restecg double precision,
		thalach double precision, exang double precision, oldpeak double precision, slope double precision, ca double precision, thal double precision, target int, note text)`, table))
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s VALUES
		(63,1,3,145,233,1,0,150,0,2.3,0,0,1,1,'a'),
		(57,0,0,140,241,0,1,123,1,0.2,1,0,3,0,'b')`, table))
	require.NoError(t, err)

	ds, err := NewDatasetRepository(db, table).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.RecordCount())
	assert.Equal(t, 1, ds.PositiveCount())
}

func TestImportQueries(t *testing.T) {
	create := createTableQuery("clinical.heart")
	assert.Contains(t, create, `CREATE TABLE IF NOT EXISTS "clinical"."heart"`)
	assert.Contains(t, create, `"oldpeak" double precision NOT NULL`)
	assert.Contains(t, create, `"target" integer NOT NULL`)

	insert := insertQuery("heart_disease")
	assert.True(t, strings.HasPrefix(insert, `INSERT INTO "heart_disease" ("age", "sex", "cp"`), insert)
	assert.Contains(t, insert, "VALUES (:age, :sex, :cp, :trestbps")
	assert.True(t, strings.HasSuffix(insert, ":thal, :target)"), insert)
}

func TestFromRow(t *testing.T) {
	row := heartRow{Age: 57, CP: 2, TrestBPS: 130, Chol: 236, Thalach: 174, Oldpeak: 0.4, Slope: 1, CA: 1, Thal: 2}.toRow()
	assert.Equal(t, row, fromRow(row).toRow())
}

// TestImport_Integration seeds a fresh table and reads it back
func TestImport_Integration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Connect(ctx, url, 2)
	require.NoError(t, err)
	defer db.Close()

	table := fmt.Sprintf("heart_import_%d", time.Now().UnixNano())
	defer db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table)

	rows := []dataset.Row{
		{Record: clinical.DefaultRecord(), Target: 0},
		{Record: clinical.Record{Age: 63, Sex: 1, CP: 3, TrestBPS: 145, Chol: 233, FBS: 1, Thalach: 150, Oldpeak: 2.3, Thal: 1}, Target: 1},
	}
	ds, err := dataset.New("test", rows)
	require.NoError(t, err)

	importer := NewDatasetImporter(db, table)
	n, err := importer.Import(ctx, ds, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = importer.Import(ctx, ds, false)
	assert.Error(t, err, "a populated table is not overwritten without replace")

	n, err = importer.Import(ctx, ds, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	loaded, err := NewDatasetRepository(db, table).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.RecordCount())
	assert.Equal(t, 1, loaded.PositiveCount())
}
