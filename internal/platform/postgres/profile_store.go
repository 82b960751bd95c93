package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/sprout/internal/domain"
	"github.com/phrazzld/sprout/internal/platform/logger"
	"github.com/phrazzld/sprout/internal/store"
)

// PostgresProfileStore implements store.ProfileStore on the singleton
// profiles table.
type PostgresProfileStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProfileStore creates a new PostgreSQL implementation of the ProfileStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProfileStore(db store.DBTX, l *slog.Logger) *PostgresProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if l == nil {
		l = slog.Default()
	}

	return &PostgresProfileStore{
		db:     db,
		logger: l.With(slog.String("component", "profile_store"), slog.String("driver", "postgres")),
	}
}

var _ store.ProfileStore = (*PostgresProfileStore)(nil)

// Load implements store.ProfileStore.Load
func (s *PostgresProfileStore) Load(ctx context.Context) (*domain.Profile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, stage, target_date, origin_date, attributes, last_updated_at, created_at
		FROM profiles
		WHERE singleton
	`

	var (
		p          domain.Profile
		stage      string
		targetDate sql.NullTime
		originDate sql.NullTime
		attributes []byte
	)

	err := s.db.QueryRowContext(ctx, query).Scan(
		&p.ID,
		&p.Name,
		&stage,
		&targetDate,
		&originDate,
		&attributes,
		&p.LastUpdatedAt,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no profile stored")
			return nil, store.ErrProfileNotFound
		}
		log.Error("failed to load profile", slog.String("error", err.Error()))
		return nil, store.NewStoreError("profile", "load", "query failed", MapError(err))
	}

	p.Stage = domain.Stage(stage)
	if targetDate.Valid {
		t := targetDate.Time.UTC()
		p.TargetDate = &t
	}
	if originDate.Valid {
		o := originDate.Time.UTC()
		p.OriginDate = &o
	}
	if err := json.Unmarshal(attributes, &p.Attributes); err != nil {
		log.Warn("stored attributes cannot be decoded", slog.String("error", err.Error()))
		return nil, store.NewStoreError("profile", "load", err.Error(), store.ErrCorrupted)
	}
	p.Attributes = domain.NormalizeAttributes(p.Attributes)

	if err := p.Validate(); err != nil {
		log.Warn("stored profile is invalid", slog.String("error", err.Error()))
		return nil, store.NewStoreError("profile", "load", err.Error(), store.ErrCorrupted)
	}

	return &p, nil
}

// Save implements store.ProfileStore.Save as a single upsert so the stored
// row is always a complete profile.
func (s *PostgresProfileStore) Save(ctx context.Context, p *domain.Profile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if p == nil {
		return fmt.Errorf("%w: nil profile", store.ErrInvalidEntity)
	}
	if err := p.Validate(); err != nil {
		log.Warn("profile validation failed during save",
			slog.String("error", err.Error()),
			slog.String("profile_id", p.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	attributes, err := json.Marshal(domain.NormalizeAttributes(p.Attributes))
	if err != nil {
		return store.NewStoreError("profile", "save", "encode attributes", err)
	}

	query := `
		INSERT INTO profiles (
			singleton, id, name, stage, target_date, origin_date, attributes, last_updated_at, created_at
		)
		VALUES (TRUE, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (singleton) DO UPDATE SET
			id = EXCLUDED.id,
			name = EXCLUDED.name,
			stage = EXCLUDED.stage,
			target_date = EXCLUDED.target_date,
			origin_date = EXCLUDED.origin_date,
			attributes = EXCLUDED.attributes,
			last_updated_at = EXCLUDED.last_updated_at,
			created_at = EXCLUDED.created_at
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		p.ID,
		p.Name,
		string(p.Stage),
		p.TargetDate,
		p.OriginDate,
		string(attributes),
		p.LastUpdatedAt,
		p.CreatedAt,
	)
	if err != nil {
		if IsCheckConstraintViolation(err) {
			log.Warn("profile rejected by schema constraint",
				slog.String("error", err.Error()),
				slog.String("profile_id", p.ID.String()))
			return store.NewStoreError("profile", "save", "rejected by constraint", MapError(err))
		}
		log.Error("failed to save profile",
			slog.String("error", err.Error()),
			slog.String("profile_id", p.ID.String()))
		return store.NewStoreError("profile", "save", "upsert failed", MapError(err))
	}

	log.Debug("profile saved",
		slog.String("profile_id", p.ID.String()),
		slog.String("stage", p.Stage.String()))
	return nil
}

// Delete implements store.ProfileStore.Delete
func (s *PostgresProfileStore) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM profiles`); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete profile",
			slog.String("error", err.Error()))
		return store.NewStoreError("profile", "delete", "delete failed", MapError(err))
	}
	return nil
}
