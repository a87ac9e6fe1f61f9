// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// versionTable tracks the current revision. It holds exactly one row once
// the database is initialized.
const versionTable = "airlift_version"

// Target identifies the metadata database of one deployment environment.
// Host may be set directly; when empty it is derived from the instance,
// region and project following the managed-instance naming convention.
type Target struct {
	Environment string
	Instance    string
	Project     string
	Region      string
	Host        string
	Port        int
	Database    string
	SSLMode     string
}

// DSN assembles the connection URL. Credentials are passed separately and
// come from the process environment, never from configuration files.
func (t Target) DSN(user, password string) string {
	host := t.Host
	if host == "" {
		host = fmt.Sprintf("%s.%s.%s.sql.internal", t.Instance, t.Region, t.Project)
	}
	port := t.Port
	if port == 0 {
		port = 5432
	}
	sslMode := t.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     "/" + t.Database,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

// DB is the subset of sqlx.DB the environment needs; it exists so tests can
// substitute a transaction source.
type DB interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// Environment drives the revision chain against one target database.
type Environment struct {
	chain  *Chain
	db     DB
	logger *zerolog.Logger
}

// EnvOption configures an Environment.
type EnvOption func(*Environment)

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) EnvOption {
	return func(e *Environment) { e.logger = logger }
}

// NewEnvironment builds an Environment over an open database handle.
func NewEnvironment(chain *Chain, db DB, opts ...EnvOption) *Environment {
	nop := zerolog.Nop()
	e := &Environment{chain: chain, db: db, logger: &nop}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Connect opens the target database and returns an Environment over it.
func Connect(chain *Chain, target Target, user, password string, opts ...EnvOption) (*Environment, *sqlx.DB, error) {
	db, err := sqlx.Open("postgres", target.DSN(user, password))
	if err != nil {
		return nil, nil, ExecError.Wrap(err, "failed to open database for environment %s", target.Environment)
	}
	return NewEnvironment(chain, db, opts...), db, nil
}

// Current returns the current revision id, or "" when the tracking table is
// absent or empty (uninitialized database).
func (e *Environment) Current(ctx context.Context) (string, error) {
	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", ExecError.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var version string
	err = tx.GetContext(ctx, &version, fmt.Sprintf(`SELECT version_num FROM %s LIMIT 1`, versionTable))
	switch {
	case err == sql.ErrNoRows:
		return "", tx.Commit()
	case isUndefinedTable(err):
		// A missing table means uninitialized. The failed SELECT has already
		// poisoned the transaction, so it must be rolled back, not committed.
		return "", nil
	case err != nil:
		return "", ExecError.Wrap(err, "failed to read current revision")
	}
	return version, tx.Commit()
}

// MigrationNeeded reports whether the current pointer differs from the chain
// head. An uninitialized database always needs migration.
func (e *Environment) MigrationNeeded(ctx context.Context) (bool, error) {
	current, err := e.Current(ctx)
	if err != nil {
		return false, err
	}
	return current == "" || current != e.chain.Head(), nil
}

// Upgrade applies revisions from the current position up to target ("head"
// or "" for the chain head) inside a single transaction. The tracking row is
// updated after each revision; if any statement fails the transaction rolls
// back and the pointer is unchanged.
func (e *Environment) Upgrade(ctx context.Context, target string) error {
	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return ExecError.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureVersionTable(ctx, tx); err != nil {
		return err
	}
	current, err := currentIn(ctx, tx)
	if err != nil {
		return err
	}

	path, err := e.chain.UpgradePath(current, target)
	if err != nil {
		return err
	}
	if len(path) == 0 {
		e.logger.Info().Str("current", current).Msg("Schema already at target revision")
		return tx.Commit()
	}

	for _, rev := range path {
		e.logger.Info().
			Str("revision", rev.ID).
			Str("description", rev.Description).
			Msg("Applying revision")

		for _, stmt := range rev.UpgradeStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return ExecError.Wrap(err, "revision %s failed", rev.ID)
			}
		}
		if err := setCurrentIn(ctx, tx, rev.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return ExecError.Wrap(err, "failed to commit upgrade")
	}
	return nil
}

// Downgrade reverts revisions from the current position back to target
// ("base" or "" reverts everything) inside a single transaction.
func (e *Environment) Downgrade(ctx context.Context, target string) error {
	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return ExecError.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureVersionTable(ctx, tx); err != nil {
		return err
	}
	current, err := currentIn(ctx, tx)
	if err != nil {
		return err
	}

	path, err := e.chain.DowngradePath(current, target)
	if err != nil {
		return err
	}

	for _, rev := range path {
		e.logger.Info().
			Str("revision", rev.ID).
			Str("description", rev.Description).
			Msg("Reverting revision")

		for _, stmt := range rev.DowngradeStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return ExecError.Wrap(err, "downgrade of revision %s failed", rev.ID)
			}
		}
		if err := setCurrentIn(ctx, tx, rev.DownRevision); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return ExecError.Wrap(err, "failed to commit downgrade")
	}
	return nil
}

// HeadRevision returns the chain head id.
func (e *Environment) HeadRevision() string {
	return e.chain.Head()
}

func ensureVersionTable(ctx context.Context, tx *sqlx.Tx) error {
	_, err := tx.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (version_num VARCHAR(32) NOT NULL)`, versionTable))
	if err != nil {
		return ExecError.Wrap(err, "failed to create version table")
	}
	return nil
}

// currentIn reads the pointer inside an open transaction. Callers create the
// version table first, so a missing-table error here is a real fault.
func currentIn(ctx context.Context, tx *sqlx.Tx) (string, error) {
	var version string
	err := tx.GetContext(ctx, &version, fmt.Sprintf(`SELECT version_num FROM %s LIMIT 1`, versionTable))
	switch {
	case err == sql.ErrNoRows:
		return "", nil
	case err != nil:
		return "", ExecError.Wrap(err, "failed to read current revision")
	}
	return version, nil
}

func setCurrentIn(ctx context.Context, tx *sqlx.Tx, revisionID string) error {
	if revisionID == "" {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, versionTable))
		if err != nil {
			return ExecError.Wrap(err, "failed to clear current revision")
		}
		return nil
	}

	res, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET version_num = $1`, versionTable), revisionID)
	if err != nil {
		return ExecError.Wrap(err, "failed to update current revision")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (version_num) VALUES ($1)`, versionTable), revisionID)
		if err != nil {
			return ExecError.Wrap(err, "failed to insert current revision")
		}
	}
	return nil
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "42P01"
	}
	return false
}
