package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// OutcomeRecord is one company's terminal classification within a run.
type OutcomeRecord struct {
	CompanyURL   string
	Domain       string
	Outcome      string
	Stage        string
	Reason       string
	ContactEmail string
	DraftID      string
}

// RunCounts holds the final tally for a campaign run.
type RunCounts struct {
	Processed int
	Successes int
	Failures  int
	Errors    int
}

// CreateCampaignRun creates a new campaign run record and returns its ID
func (db *DB) CreateCampaignRun(ctx context.Context, spreadsheetID string, totalCompanies int) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO campaign_runs (spreadsheet_id, total_companies, status)
		 VALUES ($1, $2, 'running')
		 RETURNING id`,
		spreadsheetID, totalCompanies,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create campaign run: %w", err)
	}
	return id, nil
}

// RecordOutcome stores one company's terminal classification
func (db *DB) RecordOutcome(ctx context.Context, runID uuid.UUID, rec OutcomeRecord) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO company_outcomes
		   (run_id, company_url, domain, outcome, stage, reason, contact_email, draft_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		runID, rec.CompanyURL, rec.Domain, rec.Outcome, rec.Stage, rec.Reason,
		rec.ContactEmail, rec.DraftID,
	)
	if err != nil {
		return fmt.Errorf("failed to record outcome for %s: %w", rec.CompanyURL, err)
	}
	return nil
}

// CompleteCampaignRun marks a run finished and stores the final tally
func (db *DB) CompleteCampaignRun(ctx context.Context, runID uuid.UUID, status string, counts RunCounts) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE campaign_runs
		 SET status = $1, processed = $2, successes = $3, failures = $4,
		     errors = $5, completed_at = NOW()
		 WHERE id = $6`,
		status, counts.Processed, counts.Successes, counts.Failures,
		counts.Errors, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete campaign run: %w", err)
	}
	return nil
}
