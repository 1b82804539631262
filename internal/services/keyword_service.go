package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/crm-api/internal/constants"
	"github.com/yukikurage/crm-api/internal/forms"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrSuggestionsNotConfigured = errors.New("keyword suggestions are not configured")
	ErrNothingToSuggestFrom     = errors.New("there are no interactions to suggest keywords from")
)

func duplicateKeyword() error {
	return forms.FieldError("keyword", "Keyword with this Keyword already exists.")
}

// suggestionSampleSize is how many recent descriptions feed a suggestion.
const suggestionSampleSize = 50

// KeywordSuggester proposes filter keywords for interaction descriptions.
type KeywordSuggester interface {
	SuggestKeywords(ctx context.Context, descriptions []string) ([]string, error)
}

// KeywordService handles keyword business logic
type KeywordService struct {
	keywordRepo     repository.KeywordRepository
	interactionRepo repository.InteractionRepository
	suggester       KeywordSuggester
}

// NewKeywordService creates a new KeywordService. suggester may be nil.
func NewKeywordService(keywordRepo repository.KeywordRepository, interactionRepo repository.InteractionRepository, suggester KeywordSuggester) *KeywordService {
	return &KeywordService{
		keywordRepo:     keywordRepo,
		interactionRepo: interactionRepo,
		suggester:       suggester,
	}
}

// KeywordInput is the body of a keyword create.
type KeywordInput struct {
	Keyword string `json:"keyword" validate:"required,max=250"`
}

// CreateKeyword stores a new unique keyword
func (s *KeywordService) CreateKeyword(input KeywordInput) (*models.Keyword, error) {
	input.Keyword = strings.TrimSpace(input.Keyword)
	if err := forms.Struct(input).Err(); err != nil {
		return nil, err
	}

	if _, err := s.keywordRepo.FindByKeyword(input.Keyword); err == nil {
		return nil, duplicateKeyword()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check keyword: %w", err)
	}

	keyword := &models.Keyword{Keyword: input.Keyword}
	if err := s.keywordRepo.Create(keyword); err != nil {
		// a concurrent create of the same keyword won the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, duplicateKeyword()
		}
		return nil, fmt.Errorf("failed to create keyword: %w", err)
	}
	return keyword, nil
}

// SuggestKeywords asks the suggester for new keywords based on recent
// interactions. Keywords already stored are left out and nothing is saved.
func (s *KeywordService) SuggestKeywords(ctx context.Context) ([]string, error) {
	if s.suggester == nil {
		return nil, ErrSuggestionsNotConfigured
	}

	descriptions, err := s.interactionRepo.RecentDescriptions(suggestionSampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load interactions: %w", err)
	}
	if len(descriptions) == 0 {
		return nil, ErrNothingToSuggestFrom
	}

	existing, err := s.keywordRepo.ListValues()
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}

	candidates, err := s.suggester.SuggestKeywords(ctx, descriptions)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(existing)+len(candidates))
	for _, kw := range existing {
		seen[strings.ToLower(kw)] = struct{}{}
	}

	suggestions := []string{}
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		key := strings.ToLower(candidate)
		if candidate == "" || len(candidate) > 250 {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		suggestions = append(suggestions, candidate)
		if len(suggestions) == constants.MaxSuggestedKeywords {
			break
		}
	}

	return suggestions, nil
}
