package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore implements driven.ConfigStore over a single global_settings
// row and a per_type_config table keyed by type tag. FetchSnapshot issues
// both queries fresh on every call: the Configuration Gate is the only
// caller, and it is the one place request-scoped caching is allowed to
// happen (it doesn't), so there is no store-level cache to invalidate.
type ConfigStore struct {
	db *sql.DB
}

// NewConfigStore builds a PostgreSQL-backed ConfigStore.
func NewConfigStore(db *sql.DB) *ConfigStore {
	return &ConfigStore{db: db}
}

// FetchSnapshot reads global_settings and per_type_config and assembles
// them into a single ConfigSnapshot. A missing global_settings row falls
// back to the zero value (EffectiveThreshold's hardcoded default applies).
func (s *ConfigStore) FetchSnapshot(ctx context.Context) (*domain.ConfigSnapshot, error) {
	global, err := s.fetchGlobal(ctx)
	if err != nil {
		return nil, err
	}

	perType, err := s.fetchPerType(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.ConfigSnapshot{Global: global, PerType: perType}, nil
}

func (s *ConfigStore) fetchGlobal(ctx context.Context) (domain.GlobalSettings, error) {
	const query = `
		SELECT default_threshold, batch_label_limit
		FROM global_settings
		WHERE id = 1
	`

	var global domain.GlobalSettings
	err := s.db.QueryRowContext(ctx, query).Scan(&global.DefaultThreshold, &global.BatchLabelLimit)
	if err == sql.ErrNoRows {
		return domain.GlobalSettings{}, nil
	}
	if err != nil {
		return domain.GlobalSettings{}, fmt.Errorf("fetch global settings: %w", err)
	}

	return global, nil
}

func (s *ConfigStore) fetchPerType(ctx context.Context) (map[string]domain.PerTypeConfig, error) {
	const query = `
		SELECT type_tag, enabled, threshold, detector_scope, detector_label, category
		FROM per_type_config
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list per-type config: %w", err)
	}
	defer rows.Close()

	perType := make(map[string]domain.PerTypeConfig)
	for rows.Next() {
		var typeTag, scope string
		var cfg domain.PerTypeConfig
		var detectorLabel, category sql.NullString

		if err := rows.Scan(&typeTag, &cfg.Enabled, &cfg.Threshold, &scope, &detectorLabel, &category); err != nil {
			return nil, fmt.Errorf("scan per-type config: %w", err)
		}

		cfg.Detector = domain.DetectorScope(scope)
		cfg.DetectorLabel = detectorLabel.String
		cfg.Category = category.String
		perType[typeTag] = cfg
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate per-type config: %w", err)
	}

	return perType, nil
}
