package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"secrecon/pkg/core/security"
)

// Run is one persisted extraction run: the records, the report and
// where the document came from.
type Run struct {
	ID        uuid.UUID         `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Source    string            `json:"source"`
	Records   []security.Record `json:"records"`
	Report    security.Report   `json:"report"`
}

// RunStore saves and loads runs. With a pool it uses the
// extraction_runs table; otherwise it writes one JSON file per run.
type RunStore struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewRunStore builds a store. If pool is nil and dir is empty, a local
// default directory is used.
func NewRunStore(pool *pgxpool.Pool, dir string) *RunStore {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "extraction_runs")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] Check RunStore dir: %v\n", err)
		}
	}
	return &RunStore{pool: pool, fileDir: dir}
}

// SaveRun persists a run and returns its assigned ID.
func (s *RunStore) SaveRun(ctx context.Context, source string, records []security.Record, report security.Report) (uuid.UUID, error) {
	run := Run{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
		Records:   records,
		Report:    report,
	}

	recordsJSON, err := json.Marshal(run.Records)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal records: %w", err)
	}
	reportJSON, err := json.Marshal(run.Report)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	if s.pool != nil {
		query := `
			INSERT INTO extraction_runs (id, created_at, source, records, report)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := s.pool.Exec(ctx, query, run.ID, run.CreatedAt, run.Source, recordsJSON, reportJSON); err != nil {
			return uuid.Nil, fmt.Errorf("failed to save run to db: %w", err)
		}
	}

	if s.fileDir != "" {
		fileBytes, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to marshal run: %w", err)
		}
		if err := os.WriteFile(s.runPath(run.ID), fileBytes, 0644); err != nil {
			return uuid.Nil, fmt.Errorf("failed to save run to file: %w", err)
		}
	}

	return run.ID, nil
}

// GetRun loads a run by ID. Returns nil without error on a miss.
func (s *RunStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	if s.pool != nil {
		query := `
			SELECT created_at, source, records, report
			FROM extraction_runs
			WHERE id = $1
			LIMIT 1
		`
		var run Run
		var recordsJSON, reportJSON []byte
		err := s.pool.QueryRow(ctx, query, id).Scan(&run.CreatedAt, &run.Source, &recordsJSON, &reportJSON)
		if err != nil {
			return nil, nil
		}
		run.ID = id
		if err := json.Unmarshal(recordsJSON, &run.Records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stored records: %w", err)
		}
		if err := json.Unmarshal(reportJSON, &run.Report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stored report: %w", err)
		}
		return &run, nil
	}

	if s.fileDir != "" {
		bytes, err := os.ReadFile(s.runPath(id))
		if err != nil {
			return nil, nil
		}
		var run Run
		if err := json.Unmarshal(bytes, &run); err != nil {
			return nil, fmt.Errorf("failed to parse stored run: %w", err)
		}
		return &run, nil
	}

	return nil, nil
}

// ListRuns returns the IDs of all stored runs, newest first.
func (s *RunStore) ListRuns(ctx context.Context) ([]uuid.UUID, error) {
	if s.pool != nil {
		rows, err := s.pool.Query(ctx, `SELECT id FROM extraction_runs ORDER BY created_at DESC`)
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		defer rows.Close()

		var ids []uuid.UUID
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, rows.Err()
	}

	if s.fileDir != "" {
		entries, err := os.ReadDir(s.fileDir)
		if err != nil {
			return nil, nil
		}
		var ids []uuid.UUID
		for _, e := range entries {
			name := e.Name()
			if filepath.Ext(name) != ".json" {
				continue
			}
			id, err := uuid.Parse(name[:len(name)-len(".json")])
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	return nil, nil
}

func (s *RunStore) runPath(id uuid.UUID) string {
	return filepath.Join(s.fileDir, id.String()+".json")
}
