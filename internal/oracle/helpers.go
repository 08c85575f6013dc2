package oracle

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed prompts/feature_analysis.txt
var featureAnalysisPrompt string

//go:embed prompts/identity_match.txt
var identityMatchPrompt string

// maxImageSize caps capture dimensions before upload. Larger images only
// cost tokens without improving the oracle's descriptions.
const maxImageSize = 800

func buildIdentityMatchPrompt(candidates []Candidate) (string, error) {
	contextJSON, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("failed to serialize candidate profiles: %w", err)
	}
	return fmt.Sprintf(identityMatchPrompt, string(contextJSON)), nil
}

// parseAnalysis decodes an oracle analysis body. Any parse failure is a
// schema violation, never a silent empty result.
func parseAnalysis(content string) (*FeatureAnalysis, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty analysis body", ErrInvalidResponse)
	}

	var analysis FeatureAnalysis
	if err := json.Unmarshal([]byte(extractJSON(content)), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v (body: %s)", ErrInvalidResponse, err, content)
	}
	return &analysis, nil
}

// parseDecision decodes an oracle match body.
func parseDecision(content string) (*MatchDecision, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty match body", ErrInvalidResponse)
	}

	var decision MatchDecision
	if err := json.Unmarshal([]byte(extractJSON(content)), &decision); err != nil {
		return nil, fmt.Errorf("%w: %v (body: %s)", ErrInvalidResponse, err, content)
	}
	return &decision, nil
}

// extractJSON attempts to extract a JSON object from a response that may
// contain extra text around it.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	if start == -1 {
		return content
	}

	// Find matching closing brace
	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}

	// If no matching brace found, return from start
	return content[start:]
}
