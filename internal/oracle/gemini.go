package oracle

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

// analysisSchema constrains the analysis response so all four descriptor
// fields are guaranteed present.
var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"face": {Type: genai.TypeString, Description: "Detailed description of facial structure, bone shape, and defining marks."},
		"iris": {Type: genai.TypeString, Description: "Detailed description of iris patterns, colors, and unique textures."},
		"ears": {Type: genai.TypeString, Description: "Description of ear structure, helix shape, and lobe type."},
		"eyes": {Type: genai.TypeString, Description: "Measurement of spacing, shape, and lid characteristics."},
	},
	Required: []string{"face", "iris", "ears", "eyes"},
}

var matchSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"profileId":  {Type: genai.TypeString, Nullable: genai.Ptr(true), Description: "The matching profile ID or null"},
		"confidence": {Type: genai.TypeNumber, Description: "Matching confidence 0-100"},
		"reason":     {Type: genai.TypeString, Description: "Explanation of why this match was made or rejected"},
	},
	Required: []string{"profileId", "confidence", "reason"},
}

type GeminiProvider struct {
	client *genai.Client
	usage  Usage
}

func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() string {
	return geminiModel
}

func (p *GeminiProvider) GetUsage() *Usage {
	return &p.usage
}

func (p *GeminiProvider) ResetUsage() {
	p.usage = Usage{}
}

func (p *GeminiProvider) trackUsage(inputTokens, outputTokens int32) {
	p.usage.InputTokens += int(inputTokens)
	p.usage.OutputTokens += int(outputTokens)
}

func (p *GeminiProvider) AnalyzeFeatures(ctx context.Context, imageData []byte) (*FeatureAnalysis, error) {
	content, err := p.generate(ctx, featureAnalysisPrompt, imageData, analysisSchema)
	if err != nil {
		return nil, err
	}
	return parseAnalysis(content)
}

func (p *GeminiProvider) MatchIdentity(ctx context.Context, imageData []byte, candidates []Candidate) (*MatchDecision, error) {
	prompt, err := buildIdentityMatchPrompt(candidates)
	if err != nil {
		return nil, err
	}

	content, err := p.generate(ctx, prompt, imageData, matchSchema)
	if err != nil {
		return nil, err
	}
	return parseDecision(content)
}

// generate issues exactly one schema-constrained request. Retry policy, if
// any, belongs to the caller of the oracle client, never here.
func (p *GeminiProvider) generate(ctx context.Context, prompt string, imageData []byte, schema *genai.Schema) (string, error) {
	resized, err := ResizeImage(imageData, maxImageSize)
	if err != nil {
		return "", fmt.Errorf("failed to resize image: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{InlineData: &genai.Blob{Data: resized, MIMEType: "image/jpeg"}},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	result, err := p.client.Models.GenerateContent(ctx, geminiModel, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	if result.UsageMetadata != nil {
		p.trackUsage(result.UsageMetadata.PromptTokenCount, result.UsageMetadata.CandidatesTokenCount)
	}

	return result.Text(), nil
}
