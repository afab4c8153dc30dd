// Package duckdb opens the local readings archive and boots its schema.
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const ResourcesTableSchema = `
	CREATE TABLE IF NOT EXISTS resources (
		resource_id VARCHAR NOT NULL,
		entity_id VARCHAR,
		name VARCHAR,
		classifier VARCHAR,
		base_unit VARCHAR,
		PRIMARY KEY (resource_id)
	);
`

const ReadingsTableSchema = `
	CREATE TABLE IF NOT EXISTS readings (
		resource_id VARCHAR NOT NULL,
		ts TIMESTAMP NOT NULL,
		value DOUBLE NOT NULL,
		unit VARCHAR,
		PRIMARY KEY (resource_id, ts)
	);
`

const FetchCheckpointsSchema = `
	CREATE TABLE IF NOT EXISTS fetch_checkpoints (
		resource_id VARCHAR NOT NULL,
		last_fetched_to TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_error VARCHAR NULL,
		PRIMARY KEY (resource_id)
	);
`

var bootQueries = []string{
	ResourcesTableSchema,
	ReadingsTableSchema,
	FetchCheckpointsSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		bootQueries := append([]string{}, bootQueries...)

		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
