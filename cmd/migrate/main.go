package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cardiorisk/adapters/excel"
	"cardiorisk/adapters/postgres"
	"cardiorisk/adapters/sqlite"
	"cardiorisk/internal"
	"cardiorisk/internal/config"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

// migrate seeds the dataset table from the CSV or XLSX dataset so the servers can
// run with DATASET_SOURCE=postgres or DATASET_SOURCE=sqlite.
func main() {
	replace := flag.Bool("replace", false, "delete existing rows before importing")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: migrate [-replace] [database] [dataset_file]")
		fmt.Fprintln(os.Stderr, "database is a Postgres URL, or a file path when DATASET_SOURCE=sqlite.")
		fmt.Fprintln(os.Stderr, "Missing arguments fall back to DATABASE_URL or SQLITE_PATH and DATASET_FILE; the table is DATASET_TABLE.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(appConfig.LogLevel))

	useSQLite := appConfig.Data.Source == config.SourceSQLite
	database := appConfig.Database.URL
	if useSQLite {
		database = appConfig.Database.SQLitePath
	}
	datasetFile := appConfig.Data.File
	if flag.NArg() > 0 {
		database = flag.Arg(0)
	}
	if flag.NArg() > 1 {
		datasetFile = flag.Arg(1)
	}
	if database == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log.Printf("Starting migration from %s to table %s", datasetFile, appConfig.Data.Table)

	ds, err := excel.NewDataReader(datasetFile).Load(ctx)
	if err != nil {
		log.Fatalf("Failed to read dataset: %v", err)
	}
	if len(ds.IgnoredColumns) > 0 {
		log.Printf("Ignoring extra columns: %v", ds.IgnoredColumns)
	}

	var db *sqlx.DB
	if useSQLite {
		db, err = sqlite.Open(ctx, database, false)
	} else {
		db, err = postgres.Connect(ctx, database, appConfig.Database.ConnectRetries)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	n, err := postgres.NewDatasetImporter(db, appConfig.Data.Table).Import(ctx, ds, *replace)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Migration complete: %d records (%d with heart disease)", n, ds.PositiveCount())
}
