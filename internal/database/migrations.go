package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AddIndexes adds composite indexes used by the listing queries
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Interaction listings order by grade within a scope
		{"interactions", "idx_interactions_company_grade", "company_id, grade"},
		{"interactions", "idx_interactions_project_grade", "project_id, grade"},
		{"interactions", "idx_interactions_manager_grade", "manager_id, grade"},

		// Company list sort keys
		{"companies", "idx_companies_name", "name"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug().Str("index", idx.name).Msg("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info().Str("index", idx.name).Str("table", idx.table).Msg("Created index")
	}

	return nil
}
