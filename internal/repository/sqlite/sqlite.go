package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"shareaudit/internal/domain"
	"shareaudit/internal/recon"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Sink using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a fresh SQLite file at dbPath, replacing any previous run
func New(dbPath string) (*Repository, error) {
	if dbPath != ":memory:" {
		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to replace database: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection so :memory: databases are shared across calls
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func dsn(path string) string {
	if path == ":memory:" {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + path + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		records INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS domains (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		search_root TEXT NOT NULL,
		server TEXT,
		fallback INTEGER NOT NULL DEFAULT 0,
		hosts INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, position),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS hosts (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		host TEXT NOT NULL,
		outcome TEXT NOT NULL,
		shares INTEGER NOT NULL DEFAULT 0,
		failed_shares INTEGER NOT NULL DEFAULT 0,
		detail TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, position),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS permissions (
		run_id TEXT NOT NULL,
		path TEXT NOT NULL,
		principal TEXT NOT NULL,
		rights TEXT NOT NULL,
		access_type TEXT NOT NULL,
		inheritance_flags TEXT NOT NULL,
		propagation_flags TEXT NOT NULL,
		is_inherited INTEGER NOT NULL DEFAULT 0,
		host TEXT NOT NULL,
		share TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_permissions_path ON permissions(path, principal);
	CREATE INDEX IF NOT EXISTS idx_permissions_principal ON permissions(principal);
	CREATE INDEX IF NOT EXISTS idx_hosts_outcome ON hosts(outcome);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveReport writes the run header, domains, hosts and permissions
func (r *Repository) SaveReport(ctx context.Context, report *recon.Report) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, records) VALUES (?, ?, ?, ?)
	`, report.RunID, report.Started.UTC(), report.Finished.UTC(), len(report.Records))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, d := range report.Domains {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO domains (run_id, position, name, search_root, server, fallback, hosts, error, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, report.RunID, i, d.Domain.Name, d.Domain.SearchRoot(), stringToNull(d.Server.Address),
			boolToInt(d.Server.Fallback), len(d.Hosts), errToNull(d.Err), millis(d.Duration))
		if err != nil {
			return fmt.Errorf("failed to insert domain %s: %w", d.Domain, err)
		}
	}

	hostStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO hosts (run_id, position, host, outcome, shares, failed_shares, detail, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare host insert: %w", err)
	}
	defer hostStmt.Close()

	for i, h := range report.Hosts {
		_, err := hostStmt.ExecContext(ctx, report.RunID, i, h.Host, string(h.Outcome),
			len(h.Shares), len(h.Failures), stringToNull(h.Detail), millis(h.Duration))
		if err != nil {
			return fmt.Errorf("failed to insert host %s: %w", h.Host, err)
		}
	}

	permStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO permissions (run_id, path, principal, rights, access_type, inheritance_flags,
			propagation_flags, is_inherited, host, share)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare permission insert: %w", err)
	}
	defer permStmt.Close()

	for _, p := range report.Records {
		_, err := permStmt.ExecContext(ctx, report.RunID, p.Path, p.Principal, p.Rights, p.AccessType,
			p.InheritanceFlags, p.PropagationFlags, boolToInt(p.IsInherited), p.Host, p.Share)
		if err != nil {
			return fmt.Errorf("failed to insert permission %s: %w", p.Path, err)
		}
	}

	return tx.Commit()
}

// Permissions reads the permission table ordered by path then principal
func (r *Repository) Permissions(ctx context.Context) ([]domain.PermissionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT path, principal, rights, access_type, inheritance_flags, propagation_flags,
			is_inherited, host, share
		FROM permissions
		ORDER BY path, principal, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query permissions: %w", err)
	}
	defer rows.Close()

	var records []domain.PermissionRecord
	for rows.Next() {
		var (
			p         domain.PermissionRecord
			inherited int
		)
		if err := rows.Scan(&p.Path, &p.Principal, &p.Rights, &p.AccessType, &p.InheritanceFlags,
			&p.PropagationFlags, &inherited, &p.Host, &p.Share); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		p.IsInherited = inherited != 0
		records = append(records, p)
	}
	return records, rows.Err()
}

// OutcomeCounts returns hosts per outcome for the stored run
func (r *Repository) OutcomeCounts(ctx context.Context) (map[domain.HostOutcome]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM hosts GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.HostOutcome]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		counts[domain.HostOutcome(outcome)] = n
	}
	return counts, rows.Err()
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
