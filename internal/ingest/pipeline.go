package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"writegeist/internal/llm"
	"writegeist/internal/logging"
)

// ErrUnavailable reports that no model credentials are configured. The HTTP
// surface maps it to 501.
var ErrUnavailable = errors.New("ingest: llm not configured")

// Completer is the slice of the llm client the pipeline needs.
type Completer interface {
	Available() bool
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Result is the analysis produced for one chapter.
type Result struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Characters []string       `json:"characters"`
	Locations  []string       `json:"locations"`
	POV        []string       `json:"pov"`
	Metadata   map[string]any `json:"metadata"`
	Log        []string       `json:"log"`
}

// Pipeline runs the extraction stages in order.
type Pipeline struct {
	client Completer
	logger *slog.Logger
}

// NewPipeline wires a pipeline over the given completion client.
func NewPipeline(client Completer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		client: client,
		logger: logging.NewComponentLogger(logger, "ingest"),
	}
}

// Available reports whether the pipeline can run at all.
func (p *Pipeline) Available() bool {
	return p.client != nil && p.client.Available()
}

const systemPrompt = "You are a fiction analysis assistant. Respond with a single JSON object and nothing else."

// Prompt windows, in runes. Long chapters are truncated per stage so prompts
// stay bounded.
const (
	entityWindow   = 2000
	povWindow      = 1500
	metadataWindow = 1000
)

// Run analyzes a chapter. Stage failures degrade to fallbacks; only a missing
// API key fails the run.
func (p *Pipeline) Run(ctx context.Context, title, text string) (Result, error) {
	if !p.Available() {
		return Result{}, ErrUnavailable
	}

	res := Result{
		ID:         chapterID(title, text),
		Title:      title,
		Text:       text,
		Characters: []string{},
		Locations:  []string{},
		POV:        []string{},
		Metadata:   map[string]any{},
		Log:        []string{fmt.Sprintf("starting ingestion for chapter: %s", title)},
	}

	p.extractCharacters(ctx, &res)
	p.extractLocations(ctx, &res)
	p.extractPOV(ctx, &res)
	p.generateMetadata(ctx, &res)

	res.Log = append(res.Log, fmt.Sprintf("completed ingestion for chapter: %s", title))
	return res, nil
}

func (p *Pipeline) extractCharacters(ctx context.Context, res *Result) {
	prompt := fmt.Sprintf(
		"Extract all named characters from this chapter. Only include proper names of people, not titles or descriptions.\n\nChapter Title: %s\n\nText: %s\n\nReturn format: {\"characters\": [\"Character1\", \"Character2\"]}",
		res.Title, truncateRunes(res.Text, entityWindow))

	var parsed struct {
		Characters []string `json:"characters"`
	}
	if err := p.completeInto(ctx, prompt, &parsed); err != nil {
		p.stageFailed(res, "extract_characters", err, "empty character list")
		return
	}
	res.Characters = cleanNames(parsed.Characters)
	p.stageDone(res, "extract_characters", fmt.Sprintf("found %d characters", len(res.Characters)))
}

func (p *Pipeline) extractLocations(ctx context.Context, res *Result) {
	prompt := fmt.Sprintf(
		"Extract all named locations from this chapter: cities, countries, buildings, rooms, geographic features. Only include specific named places, not generic descriptions.\n\nChapter Title: %s\n\nText: %s\n\nReturn format: {\"locations\": [\"Location1\", \"Location2\"]}",
		res.Title, truncateRunes(res.Text, entityWindow))

	var parsed struct {
		Locations []string `json:"locations"`
	}
	if err := p.completeInto(ctx, prompt, &parsed); err != nil {
		p.stageFailed(res, "extract_locations", err, "empty location list")
		return
	}
	res.Locations = cleanNames(parsed.Locations)
	p.stageDone(res, "extract_locations", fmt.Sprintf("found %d locations", len(res.Locations)))
}

func (p *Pipeline) extractPOV(ctx context.Context, res *Result) {
	prompt := fmt.Sprintf(
		"Classify the narrative point of view of this chapter as one of: First Person, Second Person, Third Person Limited, Third Person Omniscient.\n\nChapter Title: %s\n\nText: %s\n\nReturn format: {\"pov\": [\"Third Person Limited\"]}",
		res.Title, truncateRunes(res.Text, povWindow))

	var parsed struct {
		POV []string `json:"pov"`
	}
	if err := p.completeInto(ctx, prompt, &parsed); err != nil || len(cleanNames(parsed.POV)) == 0 {
		res.POV = heuristicPOV(res.Text)
		if err == nil {
			err = errors.New("empty pov list")
		}
		p.stageFailed(res, "extract_pov", err, "pronoun-count heuristic: "+res.POV[0])
		return
	}
	res.POV = cleanNames(parsed.POV)
	p.stageDone(res, "extract_pov", "detected "+res.POV[0])
}

func (p *Pipeline) generateMetadata(ctx context.Context, res *Result) {
	basic := basicMetadata(res)

	prompt := fmt.Sprintf(
		"Analyze this chapter and return metadata: sentiment (positive, negative, or neutral), tone (brief description), reading_time_minutes (estimate), complexity (simple, moderate, or complex).\n\nChapter Title: %s\n\nText: %s\n\nReturn format: {\"sentiment\": \"...\", \"tone\": \"...\", \"reading_time_minutes\": 3, \"complexity\": \"...\"}",
		res.Title, truncateRunes(res.Text, metadataWindow))

	var parsed map[string]any
	if err := p.completeInto(ctx, prompt, &parsed); err != nil {
		basic["sentiment"] = "neutral"
		basic["tone"] = "unknown"
		res.Metadata = basic
		p.stageFailed(res, "generate_metadata", err, "basic word-count metadata")
		return
	}
	// Model fields win over the computed estimates on overlap.
	for key, value := range parsed {
		basic[key] = value
	}
	res.Metadata = basic
	p.stageDone(res, "generate_metadata", fmt.Sprintf("%d fields", len(res.Metadata)))
}

func (p *Pipeline) completeInto(ctx context.Context, prompt string, target any) error {
	content, err := p.client.CompleteJSON(ctx, systemPrompt, prompt)
	if err != nil {
		return err
	}
	if err := llm.DecodeJSON(content, target); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	return nil
}

func (p *Pipeline) stageDone(res *Result, stage, detail string) {
	res.Log = append(res.Log, fmt.Sprintf("%s: %s", stage, detail))
	p.logger.Info("stage complete",
		logging.String(logging.FieldStage, stage),
		logging.String("detail", detail))
}

func (p *Pipeline) stageFailed(res *Result, stage string, err error, fallback string) {
	res.Log = append(res.Log, fmt.Sprintf("%s: ERROR: %v - fallback: %s", stage, err, fallback))
	p.logger.Warn("stage degraded to fallback",
		logging.String(logging.FieldStage, stage),
		logging.String("fallback", fallback),
		logging.Error(err))
}

// chapterID derives a stable identifier from the title and text length.
func chapterID(title, text string) string {
	slug := strings.ReplaceAll(strings.ToLower(title), " ", "_")
	return fmt.Sprintf("chapter_%s_%d", slug, len([]rune(text)))
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func cleanNames(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// heuristicPOV guesses the point of view from pronoun frequency when the
// model is unavailable.
func heuristicPOV(text string) []string {
	lower := strings.ToLower(text)
	firstPerson := strings.Count(lower, " i ") + strings.Count(lower, "my") + strings.Count(lower, "me")
	thirdPerson := strings.Count(lower, " he ") + strings.Count(lower, " she ")
	if firstPerson > thirdPerson {
		return []string{"First Person"}
	}
	return []string{"Third Person"}
}

func basicMetadata(res *Result) map[string]any {
	words := len(strings.Fields(res.Text))
	readingTime := words / 200
	if readingTime < 1 {
		readingTime = 1
	}
	return map[string]any{
		"word_count":           words,
		"character_count":      len(res.Characters),
		"location_count":       len(res.Locations),
		"reading_time_minutes": readingTime,
	}
}
