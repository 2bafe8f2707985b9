package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"placementhelper/ats-agent/internal/models"
)

const AnalysisFailedKeyword = "Analysis failed - please try again"

var (
	errNoJSONObject = errors.New("no JSON object found in response")

	requiredAnalysisKeys     = []string{"score", "keyword_match", "missing_skills", "soft_skills", "suggestions"}
	requiredKeywordMatchKeys = []string{"matched_keywords", "missing_keywords", "match_percentage"}
)

// CanonicalErrorResult is returned whenever a response cannot be turned into a
// valid analysis. Every list is non-nil so it serializes as [].
func CanonicalErrorResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Score: 0,
		KeywordMatch: models.KeywordMatch{
			MatchedKeywords: []string{},
			MissingKeywords: []string{AnalysisFailedKeyword},
			MatchPercentage: 0,
		},
		MissingSkills: models.MissingSkills{
			TechnicalSkills:      []string{},
			ProgrammingLanguages: []string{},
			LibrariesFrameworks:  []string{},
			ToolsPlatforms:       []string{},
		},
		SoftSkills: []string{},
		Suggestions: []string{
			"Please try again with different inputs",
			"Check your API key and internet connection",
		},
	}
}

// ExtractJSONObject returns the span from the first "{" to the last "}".
func ExtractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", errNoJSONObject
	}
	return text[start : end+1], nil
}

// NormalizeAnalysis turns free-form model output into an AnalysisResult.
// It never fails: anything unparseable or structurally incomplete yields
// CanonicalErrorResult and ok=false.
func NormalizeAnalysis(raw string) (result *models.AnalysisResult, ok bool) {
	parsed, err := parseAnalysis(raw)
	if err != nil {
		slog.Warn("⚠️  Failed to normalize analysis response", "error", err, "length", len(raw))
		return CanonicalErrorResult(), false
	}
	return parsed, true
}

func parseAnalysis(raw string) (*models.AnalysisResult, error) {
	jsonStr, err := ExtractJSONObject(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &top); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if err := requireKeys(top, requiredAnalysisKeys, ""); err != nil {
		return nil, err
	}

	var keywordMatch map[string]json.RawMessage
	if err := json.Unmarshal(top["keyword_match"], &keywordMatch); err != nil || keywordMatch == nil {
		return nil, errors.New("keyword_match is not an object")
	}
	if err := requireKeys(keywordMatch, requiredKeywordMatchKeys, "keyword_match."); err != nil {
		return nil, err
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}

	result := payload.AnalysisResult
	result.KeywordMatch = payload.KeywordMatch.KeywordMatch
	result.Score = clampPercent(payload.Score)
	result.KeywordMatch.MatchPercentage = clampPercent(payload.KeywordMatch.MatchPercentage)

	return &result, nil
}

// analysisPayload shadows the numeric fields so fractional values decode.
type analysisPayload struct {
	models.AnalysisResult
	Score        float64 `json:"score"`
	KeywordMatch struct {
		models.KeywordMatch
		MatchPercentage float64 `json:"match_percentage"`
	} `json:"keyword_match"`
}

func requireKeys(obj map[string]json.RawMessage, keys []string, prefix string) error {
	var missing []string
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			missing = append(missing, prefix+k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

// clampPercent rounds v to the nearest integer within 0..100.
func clampPercent(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
