package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Advisory lock keeps the server and the recorder from migrating at once.
	const lockID = 582013447

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if !acquired {
		// Another process is migrating; wait briefly and skip
		time.Sleep(2 * time.Second)
		return nil
	}

	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS inquiries (
			id UUID PRIMARY KEY,
			use_case TEXT NOT NULL,
			variant TEXT NOT NULL,
			result TEXT NOT NULL,
			acts TEXT[] NOT NULL DEFAULT ARRAY[]::TEXT[],
			model TEXT,
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS inquiries_created_at_idx ON inquiries (created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS inquiries_acts_idx ON inquiries USING GIN (acts);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveInquiry inserts inq, assigning an id and timestamp when missing. Saving
// an id twice is a no-op so redelivered queue tasks stay idempotent.
func (s *PostgresStore) SaveInquiry(ctx context.Context, inq Inquiry) (Inquiry, error) {
	if inq.ID == uuid.Nil {
		inq.ID = uuid.New()
	}
	if inq.CreatedAt.IsZero() {
		inq.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inquiries(id, use_case, variant, result, acts, model, created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO NOTHING`,
		inq.ID, inq.UseCase, inq.Variant, inq.Result, pq.Array(pqStringArray(inq.Acts)), inq.Model, inq.CreatedAt)
	if err != nil {
		return Inquiry{}, fmt.Errorf("failed to save inquiry %s: %w", inq.ID, err)
	}
	return inq, nil
}

func (s *PostgresStore) GetInquiry(ctx context.Context, id uuid.UUID) (Inquiry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, use_case, variant, result, acts, COALESCE(model, ''), created_at
		FROM inquiries WHERE id=$1`, id)
	inq, err := scanInquiry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Inquiry{}, ErrInquiryNotFound
		}
		return Inquiry{}, fmt.Errorf("failed to get inquiry %s: %w", id, err)
	}
	return inq, nil
}

// ListInquiries returns the newest inquiries first. Act filtering is a
// case-insensitive substring match against any cited act.
func (s *PostgresStore) ListInquiries(ctx context.Context, f ListFilter) ([]Inquiry, error) {
	query, args := listQuery(f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Inquiry{}
	for rows.Next() {
		inq, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inq)
	}
	return out, rows.Err()
}

// likeEscaper makes the act filter a literal substring match.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func listQuery(f ListFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT id, use_case, variant, result, acts, COALESCE(model, ''), created_at FROM inquiries`)
	args := []any{}
	if act := strings.TrimSpace(f.Act); act != "" {
		args = append(args, "%"+likeEscaper.Replace(act)+"%")
		b.WriteString(` WHERE EXISTS (SELECT 1 FROM unnest(acts) a WHERE a ILIKE $1 ESCAPE '\')`)
	}
	args = append(args, ClampLimit(f.Limit))
	fmt.Fprintf(&b, ` ORDER BY created_at DESC LIMIT $%d`, len(args))
	return b.String(), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInquiry(row rowScanner) (Inquiry, error) {
	var (
		inq  Inquiry
		acts []string
	)
	if err := row.Scan(&inq.ID, &inq.UseCase, &inq.Variant, &inq.Result, pq.Array(&acts), &inq.Model, &inq.CreatedAt); err != nil {
		return Inquiry{}, err
	}
	inq.Acts = pqStringArray(acts)
	return inq, nil
}

func pqStringArray(items []string) []string {
	if len(items) == 0 {
		return []string{}
	}
	return items
}
