package gemini

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// MaxDescriptionLength is the maximum description length sent to the model.
const MaxDescriptionLength = 200

// MinConfidence is the lowest confidence SuggestCategory accepts.
const MinConfidence = 0.5

const suggestTimeout = 10 * time.Second

// CategorySuggestion represents a suggested category for an expense description.
type CategorySuggestion struct {
	Category   models.ExpenseCategory `json:"category"`
	Confidence float64                `json:"confidence"`
	Reasoning  string                 `json:"reasoning"`
}

// SuggestCategory returns the category Gemini picks for an expense
// description. Suggestions below MinConfidence are rejected.
func (c *Client) SuggestCategory(ctx context.Context, description string) (models.ExpenseCategory, error) {
	suggestion, err := c.Suggest(ctx, description)
	if err != nil {
		return "", err
	}
	if suggestion.Confidence < MinConfidence {
		return "", fmt.Errorf("low confidence suggestion %q: %.2f", suggestion.Category, suggestion.Confidence)
	}
	return suggestion.Category, nil
}

// Suggest asks Gemini to classify description into one of the expense categories.
func (c *Client) Suggest(ctx context.Context, description string) (*CategorySuggestion, error) {
	descHash := hashDescription(description)

	if c.generator == nil {
		logger.Log.Error().Msg("Suggest: gemini client not initialized")
		return nil, fmt.Errorf("gemini client not initialized")
	}

	sanitized := sanitizeDescription(description)
	if sanitized == "" {
		return nil, fmt.Errorf("description is required")
	}

	categories := categoryNames()
	timeoutCtx, cancel := context.WithTimeout(ctx, suggestTimeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildCategorySuggestionPrompt(sanitized)}},
		},
	}

	temp := float32(0.2)
	config := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(300),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: "You are a JSON API. You MUST respond with ONLY valid JSON, no preamble or explanation. Output a single JSON object."},
			},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"category": {
					Type:        genai.TypeString,
					Enum:        categories,
					Description: "The budgeting category of the expense",
				},
				"confidence": {
					Type:        genai.TypeNumber,
					Description: "Confidence score between 0 and 1",
				},
				"reasoning": {
					Type:        genai.TypeString,
					Description: "Brief explanation for the categorization",
				},
			},
			Required: []string{"category", "confidence", "reasoning"},
		},
	}

	resp, err := c.generate(timeoutCtx, contents, config)
	if err != nil {
		logger.Log.Error().Err(err).Str("description_hash", descHash).Msg("Suggest: Gemini API call failed")
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("no response from Gemini")
	}

	fullText := resp.Text()
	if fullText == "" {
		logger.Log.Warn().Str("description_hash", descHash).Msg("Suggest: no text content in Gemini response")
		return nil, fmt.Errorf("no text content in response")
	}

	jsonText := extractJSON(fullText)
	if jsonText == "" {
		logger.Log.Warn().Str("description_hash", descHash).Msg("Suggest: no JSON found in Gemini response")
		return nil, fmt.Errorf("no JSON found in response")
	}

	var suggestion CategorySuggestion
	if err := json.Unmarshal([]byte(jsonText), &suggestion); err != nil {
		logger.Log.Error().Err(err).Str("description_hash", descHash).Msg("Suggest: failed to parse JSON response")
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	suggestion.Category = models.ExpenseCategory(strings.ToLower(strings.TrimSpace(string(suggestion.Category))))
	if suggestion.Category == "" || !suggestion.Category.Valid() {
		logger.Log.Warn().
			Str("description_hash", descHash).
			Str("suggested_category", string(suggestion.Category)).
			Msg("Suggest: suggested category is not an expense category")
		return nil, fmt.Errorf("suggested category '%s' not in available categories", suggestion.Category)
	}
	if suggestion.Confidence < 0.0 || suggestion.Confidence > 1.0 {
		return nil, fmt.Errorf("confidence out of range: %f", suggestion.Confidence)
	}
	suggestion.Reasoning = sanitizeReasoning(suggestion.Reasoning)

	logger.Log.Debug().
		Str("description_hash", descHash).
		Str("category", string(suggestion.Category)).
		Float64("confidence", suggestion.Confidence).
		Msg("Suggest: matched category")
	return &suggestion, nil
}

func categoryNames() []string {
	names := make([]string, len(models.ExpenseCategories))
	for i, c := range models.ExpenseCategories {
		names[i] = string(c)
	}
	return names
}

// buildCategorySuggestionPrompt creates the prompt for category suggestion.
func buildCategorySuggestionPrompt(description string) string {
	return fmt.Sprintf(`Categorize this expense for a personal budget: "%s"

Available categories:
- fixed: recurring obligations such as rent, utilities, insurance, subscriptions, loan payments
- flexible: discretionary day-to-day spending such as dining, groceries, transport, shopping, entertainment
- investment: buying stocks, funds, crypto or other assets
- savings: money set aside into savings or toward a goal
- other: anything that fits none of the above

Rules:
- Choose exactly one category name from the list
- Higher confidence (0.8-1.0) for obvious cases, lower (0.5-0.7) for ambiguous ones

Return JSON only:
{"category": "category name", "confidence": 0.0-1.0, "reasoning": "brief explanation"}`, description)
}

// extractJSON extracts a JSON object from text that may contain preamble.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// SanitizeForPrompt strips characters that could break the prompt
// structure, collapses whitespace and truncates to maxLength bytes.
func SanitizeForPrompt(input string, maxLength int) string {
	input = strings.ReplaceAll(input, `"`, `'`)
	input = strings.ReplaceAll(input, "`", "'")
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.Join(strings.Fields(input), " ")

	if len(input) > maxLength {
		input = strings.TrimSpace(input[:maxLength])
	}
	return input
}

func sanitizeDescription(description string) string {
	return SanitizeForPrompt(description, MaxDescriptionLength)
}

func sanitizeReasoning(reasoning string) string {
	reasoning = strings.Join(strings.Fields(reasoning), " ")

	const maxReasoningLength = 500
	if len(reasoning) > maxReasoningLength {
		reasoning = strings.TrimSpace(reasoning[:maxReasoningLength])
	}
	return reasoning
}

// hashDescription is a short SHA256 of the description for logging.
func hashDescription(description string) string {
	hash := sha256.Sum256([]byte(description))
	return hex.EncodeToString(hash[:8])
}
