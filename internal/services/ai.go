package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/crm-api/internal/constants"
)

// AIService suggests interaction keywords using OpenAI.
type AIService struct {
	client *openai.Client
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// SuggestKeywords extracts short filter keywords from interaction descriptions
func (s *AIService) SuggestKeywords(ctx context.Context, descriptions []string) ([]string, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You help sales managers filter their log of client interactions.
Below are descriptions of recent interactions, one per line.

%s

Suggest up to %d short keywords (one or two words each) that would be useful
for finding groups of these interactions, such as topics, products or outcomes.

Return only a JSON array of strings, for example ["pricing", "contract renewal"].
Return [] if nothing stands out. Do not include any explanation.`,
		strings.Join(descriptions, "\n"), constants.MaxSuggestedKeywords)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimSuffix(strings.TrimPrefix(content, "```"), "```")

	var keywords []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &keywords); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return keywords, nil
}
