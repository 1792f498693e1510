package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/iwvelando/debt-payoff/internal/config"
	"github.com/iwvelando/debt-payoff/internal/payoff"
	"github.com/iwvelando/debt-payoff/pkg/datetime"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresRepository reads loans from a postgres table with the columns
// id, name, principal, annual_rate, minimum_payment, start_date, priority.
type PostgresRepository struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

// NewPostgresRepository wraps an open database handle.
func NewPostgresRepository(db *sql.DB, table string, logger *zap.Logger) *PostgresRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if table == "" {
		table = "loans"
	}
	return &PostgresRepository{db: db, table: table, logger: logger}
}

// OpenPostgres opens a connection pool for cfg. No connection is made until
// the first query.
func OpenPostgres(cfg config.PostgresConfig, logger *zap.Logger) (*PostgresRepository, error) {
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	return NewPostgresRepository(db, cfg.Table, logger), nil
}

// BuildDSN returns cfg.DSN, or assembles a key/value DSN from the PG*
// variables. The process environment wins over the env file.
func BuildDSN(cfg config.PostgresConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	env := map[string]string{}
	if cfg.EnvFile != "" {
		read, err := godotenv.Read(cfg.EnvFile)
		switch {
		case err == nil:
			env = read
		case errors.Is(err, fs.ErrNotExist):
		default:
			return "", fmt.Errorf("failed to read env file %s: %w", cfg.EnvFile, err)
		}
	}

	get := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		if v := env[key]; v != "" {
			return v
		}
		return fallback
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		get("PGHOST", "localhost"),
		get("PGPORT", "5432"),
		get("PGUSER", "postgres"),
		pq.QuoteLiteral(get("PGPASSWORD", "")),
		get("PGDATABASE", "debts"),
		get("PGSSLMODE", "disable"),
	), nil
}

func (p *PostgresRepository) query() string {
	return fmt.Sprintf(`SELECT id, name, principal, annual_rate, minimum_payment, start_date, priority
	FROM %s ORDER BY id`, pq.QuoteIdentifier(p.table))
}

// LoadLoans reads every row of the loans table ordered by id.
func (p *PostgresRepository) LoadLoans(ctx context.Context) ([]payoff.Loan, error) {
	rows, err := p.db.QueryContext(ctx, p.query())
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	loans, err := scanLoans(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read loans: %w", err)
	}

	p.logger.Debug(fmt.Sprintf("loaded %d loans from table %s", len(loans), p.table),
		zap.String("op", "repository.LoadLoans"),
	)
	return loans, nil
}

// Close closes the connection pool.
func (p *PostgresRepository) Close() error {
	return p.db.Close()
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanLoans(rows rowScanner) ([]payoff.Loan, error) {
	var loans []payoff.Loan
	for rows.Next() {
		var (
			loan     payoff.Loan
			start    time.Time
			priority sql.NullInt64
		)
		err := rows.Scan(
			&loan.ID,
			&loan.Name,
			&loan.Principal,
			&loan.AnnualRate,
			&loan.MinimumPayment,
			&start,
			&priority,
		)
		if err != nil {
			return nil, err
		}
		loan.StartDate = datetime.DateOf(start)
		if priority.Valid {
			p := int(priority.Int64)
			loan.Priority = &p
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return loans, nil
}
