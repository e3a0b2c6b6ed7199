// Package extract turns rendered pages into structured practitioner
// rosters via a language model.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/saransh482003/healthassist/internal/llm"
	"github.com/saransh482003/healthassist/internal/model"
	"github.com/saransh482003/healthassist/internal/render"
)

// maxTextChars caps the page text sent to the model. Token budget, not a
// correctness limit.
const maxTextChars = 6000

const systemPrompt = `You are a data extraction engine. You convert unstructured hospital website content into a JSON array of doctors. You reply with JSON only: no prose, no markdown fences.`

const extractionPromptTemplate = `Extract every doctor or medical practitioner from the content below.

Rules:
- Only include practitioners whose specialty matches or plausibly covers: %s
- Reply with a JSON array. Each element must have exactly these keys:
  "Name", "Designation", "Specialization", "Contact", "Doctor_Image"
- If a field is not present in the content, set it to "Unknown". Never omit a key.
- If no matching practitioners are found, reply with [].

Content:
%s`

// schemaKeys are the required keys of every extracted record.
var schemaKeys = []string{"Name", "Designation", "Specialization", "Contact", "Doctor_Image"}

// Extractor renders a page and interprets it into practitioner records.
type Extractor struct {
	renderer render.Renderer
	model    llm.Model
	// renderSem caps concurrent browser renders; they are the most
	// expensive resource in the pipeline.
	renderSem chan struct{}
	// limiter caps model call rate independently of render concurrency.
	limiter *rate.Limiter
}

// Option configures the Extractor.
type Option func(*Extractor)

// WithRenderConcurrency caps concurrent renders (default 2).
func WithRenderConcurrency(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.renderSem = make(chan struct{}, n)
		}
	}
}

// WithRateLimiter caps model calls.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(e *Extractor) {
		e.limiter = l
	}
}

// New creates an Extractor.
func New(renderer render.Renderer, m llm.Model, opts ...Option) *Extractor {
	e := &Extractor{
		renderer:  renderer,
		model:     m,
		renderSem: make(chan struct{}, 2),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract renders the URL and asks the model for a practitioner roster
// constrained to the specialty. The result is either a well-formed record
// list or an error, never an ambiguous shape. A model response that
// violates the schema is an error the caller treats as a soft per-page
// failure.
func (e *Extractor) Extract(ctx context.Context, url, specialty string) ([]model.PractitionerRecord, error) {
	page, err := e.renderPage(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: render %s", url)
	}

	text := truncate(page.Text, maxTextChars)

	records, err := e.interpret(ctx, specialty, text)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: interpret %s", url)
	}

	// Empty roster from rendered text: the site may hydrate its content
	// from an API. Retry once against the captured JSON payloads.
	if len(records) == 0 && len(page.JSONPayloads) > 0 {
		payload := truncate(strings.Join(page.JSONPayloads, "\n"), maxTextChars)
		records, err = e.interpret(ctx, specialty, payload)
		if err != nil {
			return nil, eris.Wrapf(err, "extract: interpret network payloads %s", url)
		}
		if len(records) > 0 {
			zap.L().Debug("extract: roster recovered from network payloads",
				zap.String("url", url),
				zap.Int("records", len(records)),
			)
		}
	}

	return records, nil
}

// truncate caps s at n bytes, backing off to a rune boundary so a
// multi-byte character is never cut in half. Hospital pages carry
// plenty of non-ASCII text.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (e *Extractor) renderPage(ctx context.Context, url string) (*model.RenderedPage, error) {
	select {
	case e.renderSem <- struct{}{}:
		defer func() { <-e.renderSem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return e.renderer.Render(ctx, url)
}

// interpret runs one model call and validates the response against the
// extraction schema.
func (e *Extractor) interpret(ctx context.Context, specialty, content string) ([]model.PractitionerRecord, error) {
	if strings.TrimSpace(content) == "" {
		return []model.PractitionerRecord{}, nil
	}
	if specialty == "" {
		specialty = "any medical specialty"
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limit wait")
		}
	}

	prompt := fmt.Sprintf(extractionPromptTemplate, specialty, content)

	reply, err := e.model.Complete(ctx, systemPrompt, []llm.Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	return ParseRoster(reply)
}

// ParseRoster decodes and validates model output. The contract is
// prompt-engineered, so the decode is strict: output must be a JSON array
// of objects carrying every schema key. Violations are errors, not
// partial results.
func ParseRoster(reply string) ([]model.PractitionerRecord, error) {
	raw := extractJSONArray(reply)
	if raw == "" {
		return nil, eris.Errorf("extract: model output is not a JSON array: %.80s", reply)
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, eris.Wrap(err, "extract: decode model output")
	}

	records := make([]model.PractitionerRecord, 0, len(items))
	for i, item := range items {
		rec := model.PractitionerRecord{}
		fields := map[string]*string{
			"Name":           &rec.Name,
			"Designation":    &rec.Designation,
			"Specialization": &rec.Specialization,
			"Contact":        &rec.Contact,
			"Doctor_Image":   &rec.DoctorImage,
		}
		for _, key := range schemaKeys {
			raw, ok := item[key]
			if !ok {
				return nil, eris.Errorf("extract: record %d missing key %s", i, key)
			}
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				// Non-string values (null, numbers) degrade to Unknown
				// rather than failing the page.
				v = ""
			}
			*fields[key] = strings.TrimSpace(v)
		}
		rec.Normalize()
		records = append(records, rec)
	}
	return records, nil
}

// extractJSONArray pulls the first JSON array out of a model reply,
// tolerating markdown fences and surrounding prose.
func extractJSONArray(reply string) string {
	s := strings.TrimSpace(reply)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}
