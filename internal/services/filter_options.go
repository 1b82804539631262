package services

import (
	"fmt"

	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
)

// FilterOptions are the choices offered next to every interaction listing.
type FilterOptions struct {
	Keywords []string
	Channels []models.Channel
}

// FilterOptionsQuery loads the current filter options. It only reads.
type FilterOptionsQuery func() (FilterOptions, error)

// NewFilterOptionsQuery builds the query over stored keywords and the
// channels present among interactions.
func NewFilterOptionsQuery(keywordRepo repository.KeywordRepository, interactionRepo repository.InteractionRepository) FilterOptionsQuery {
	return func() (FilterOptions, error) {
		keywords, err := keywordRepo.ListValues()
		if err != nil {
			return FilterOptions{}, fmt.Errorf("failed to list keywords: %w", err)
		}

		channels, err := interactionRepo.DistinctChannels()
		if err != nil {
			return FilterOptions{}, fmt.Errorf("failed to list channels: %w", err)
		}

		return FilterOptions{Keywords: keywords, Channels: channels}, nil
	}
}
