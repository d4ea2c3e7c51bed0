package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedReport creates a live report in the given status and returns its id.
func SeedReport(t *testing.T, pool *pgxpool.Pool, status string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO reports (ident, patient_id, template_id, status)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		uuid.New(), "POG"+uniqueSuffix(), int64(1), status,
	).Scan(&id)
	if err != nil {
		t.Fatalf("testhelper: SeedReport: %v", err)
	}
	return id
}

// SeedGermlineReport creates a live germline report in the given status.
func SeedGermlineReport(t *testing.T, pool *pgxpool.Pool, status string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO germline_reports (ident, patient_id, biopsy_name, source_version, source_path, status)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		uuid.New(), "POG"+uniqueSuffix(), "biop1", "v1.0.0", "/data/"+uniqueSuffix(), status,
	).Scan(&id)
	if err != nil {
		t.Fatalf("testhelper: SeedGermlineReport: %v", err)
	}
	return id
}

// SeedTherapeuticTarget creates a live therapeutic target of a report.
func SeedTherapeuticTarget(t *testing.T, pool *pgxpool.Pool, reportID int64, typ string, rank int) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO report_therapeutic_targets (ident, report_id, type, rank, therapy)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		uuid.New(), reportID, typ, rank, "therapy-"+uniqueSuffix(),
	).Scan(&id)
	if err != nil {
		t.Fatalf("testhelper: SeedTherapeuticTarget: %v", err)
	}
	return id
}

// SeedSmallMutation creates a live small mutation of a report.
func SeedSmallMutation(t *testing.T, pool *pgxpool.Pool, reportID int64, gene string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO report_small_mutations (ident, report_id, gene)
		 VALUES ($1, $2, $3) RETURNING id`,
		uuid.New(), reportID, gene,
	).Scan(&id)
	if err != nil {
		t.Fatalf("testhelper: SeedSmallMutation: %v", err)
	}
	return id
}

// SeedKBMatch creates a live KB match of a report.
func SeedKBMatch(t *testing.T, pool *pgxpool.Pool, reportID int64) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO report_kb_matches (ident, report_id, category)
		 VALUES ($1, $2, $3) RETURNING id`,
		uuid.New(), reportID, "therapeutic",
	).Scan(&id)
	if err != nil {
		t.Fatalf("testhelper: SeedKBMatch: %v", err)
	}
	return id
}
