// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newDBFromSQL(db *sql.DB) *DB {
	return &DB{
		DB:                 db,
		errorClassificator: NewPostgresErrorClassifier(),
		logger:             logger.Nop(),
	}
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func newPgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func newPgConstraintError(code, constraint string) error {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

func userRow(id, email, username string) []driver.Value {
	return []driver.Value{
		id, email, username, "hash", "Full Name", "", "DEALER_STAFF",
		true, false, int64(0), nil, nil, testNow, testNow, nil,
	}
}

func userRows(rows ...[]driver.Value) *sqlmock.Rows {
	r := sqlmock.NewRows(userColumnList)
	for _, row := range rows {
		r.AddRow(row...)
	}
	return r
}

func sessionRows(rows ...[]driver.Value) *sqlmock.Rows {
	r := sqlmock.NewRows(sessionColumnList)
	for _, row := range rows {
		r.AddRow(row...)
	}
	return r
}
