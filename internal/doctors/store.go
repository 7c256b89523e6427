// Package doctors is the PostgreSQL-backed directory of verified doctors and
// the database source for the disease to specialization mapping.
package doctors

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skufu/symptomdx/internal/diagnosis"
)

//go:embed schema.sql
var schemaSQL string

const (
	StatusPending  = "pending"
	StatusVerified = "verified"
)

const uniqueViolation = "23505"

var (
	ErrDoctorNotFound = errors.New("doctors: doctor not found")
	ErrDuplicateEmail = errors.New("doctors: email already registered")
)

const doctorColumns = `id, username, email, specialization, experience, hospital, location, status`

type Doctor struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
	Experience     int    `json:"experience"`
	Hospital       string `json:"hospital"`
	Location       string `json:"location"`
	Status         string `json:"status"`
}

type Store struct {
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, url string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }
func (s *Store) Close()                         { s.pool.Close() }

// EnsureSchema creates the directory tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// FindVerified returns verified doctors in location holding any of the given
// specializations.
func (s *Store) FindVerified(ctx context.Context, specializations []string, location string) ([]Doctor, error) {
	if len(specializations) == 0 {
		return []Doctor{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE specialization = ANY($1) AND location = $2 AND status = $3
		ORDER BY experience DESC, id`,
		specializations, location, StatusVerified)
	if err != nil {
		return nil, fmt.Errorf("query doctors: %w", err)
	}
	return collectDoctors(rows)
}

// ListByStatus returns every doctor with the given status, oldest first.
func (s *Store) ListByStatus(ctx context.Context, status string) ([]Doctor, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE status = $1 ORDER BY id`, status)
	if err != nil {
		return nil, fmt.Errorf("query doctors: %w", err)
	}
	return collectDoctors(rows)
}

// Register stores a new doctor as pending. The ID and status of d are ignored.
func (s *Store) Register(ctx context.Context, d Doctor) (Doctor, error) {
	rows, err := s.pool.Query(ctx, `
		INSERT INTO doctors (username, email, specialization, experience, hospital, location, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+doctorColumns,
		d.Username, d.Email, d.Specialization, d.Experience, d.Hospital, d.Location, StatusPending)
	if err != nil {
		return Doctor{}, fmt.Errorf("insert doctor: %w", err)
	}

	out, err := pgx.CollectOneRow(rows, pgx.RowToStructByPos[Doctor])
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Doctor{}, ErrDuplicateEmail
		}
		return Doctor{}, fmt.Errorf("insert doctor: %w", err)
	}
	return out, nil
}

// Verify marks a doctor as verified so searches can return them.
func (s *Store) Verify(ctx context.Context, id int64) (Doctor, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE doctors SET status = $2 WHERE id = $1
		RETURNING `+doctorColumns,
		id, StatusVerified)
	if err != nil {
		return Doctor{}, fmt.Errorf("verify doctor: %w", err)
	}

	out, err := pgx.CollectOneRow(rows, pgx.RowToStructByPos[Doctor])
	if errors.Is(err, pgx.ErrNoRows) {
		return Doctor{}, ErrDoctorNotFound
	}
	if err != nil {
		return Doctor{}, fmt.Errorf("verify doctor: %w", err)
	}
	return out, nil
}

func collectDoctors(rows pgx.Rows) ([]Doctor, error) {
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Doctor])
	if err != nil {
		return nil, fmt.Errorf("scan doctors: %w", err)
	}
	if out == nil {
		out = []Doctor{}
	}
	return out, nil
}

// Specializations reads the mapping table in insertion order.
func (s *Store) Specializations(ctx context.Context) ([]diagnosis.Specialization, error) {
	rows, err := s.pool.Query(ctx, `SELECT disease, specialization FROM disease_specializations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query specializations: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (diagnosis.Specialization, error) {
		var sp diagnosis.Specialization
		err := row.Scan(&sp.Disease, &sp.Name)
		return sp, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan specializations: %w", err)
	}
	return out, nil
}
