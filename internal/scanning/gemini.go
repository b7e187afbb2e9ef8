package scanning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const transcribePrompt = `Transcribe every piece of text in this document image, line by line, in reading order.
Do not summarize, translate or correct anything. Return only the text.`

// Gemini implements Extractor, and TextReader for vision transcription, using Google Gemini.
type Gemini struct {
	client  *genai.Client
	text    *genai.GenerativeModel
	targets map[Target]*genai.GenerativeModel
	timeout time.Duration
}

// NewGemini creates a new Gemini instance
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	// One model per target, each with its own response schema
	targets := make(map[Target]*genai.GenerativeModel, 2)
	for _, t := range []Target{TargetClaim, TargetMenu} {
		m := client.GenerativeModel(modelName)
		m.SetTemperature(0)
		m.ResponseMIMEType = "application/json"
		m.ResponseSchema = GenaiSchema(t)
		targets[t] = m
	}
	text := client.GenerativeModel(modelName)
	text.SetTemperature(0)

	return &Gemini{
		client:  client,
		text:    text,
		targets: targets,
		timeout: 60 * time.Second,
	}, nil
}

// Name identifies the reader
func (g *Gemini) Name() string {
	return "gemini"
}

// Extract fills the target schema from prompt
func (g *Gemini) Extract(ctx context.Context, prompt string, target Target) ([]byte, error) {
	model, ok := g.targets[target]
	if !ok {
		return nil, &UnknownTargetError{Name: string(target)}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

// ReadText transcribes the document with the vision model
func (g *Gemini) ReadText(ctx context.Context, imageData []byte, contentType string) (*OCRResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	pages, err := renderPages(imageData, contentType)
	if err != nil {
		return nil, err
	}

	// genai.ImageData expects just the format suffix, and every page is PNG after rendering
	parts := make([]genai.Part, 0, len(pages)+1)
	for _, page := range pages {
		parts = append(parts, genai.ImageData("png", page))
	}
	parts = append(parts, genai.Text(transcribePrompt))

	resp, err := g.text.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return &OCRResult{Text: text}, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}
	return strings.TrimSpace(responseText.String()), nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
