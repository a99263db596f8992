package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rafaelqm/imovia/constants"
	"github.com/rafaelqm/imovia/internal/common"
	"github.com/rafaelqm/imovia/internal/llm"
	"github.com/rafaelqm/imovia/internal/retry"
)

// SuggestionFallback is what Suggest degrades to when the model is
// unreachable. User-facing; never replaced by a raw error.
const SuggestionFallback = "Não foi possível gerar uma sugestão no momento. Tente novamente mais tarde."

const suggestInstruction = "You are an experienced real-estate broker and marketing copywriter. " +
	"Answer in the language of the request, concise and ready to paste into a listing. " +
	"Never mention that you are an AI."

const editInstructionPrefix = "Edit the attached property photo as a professional real-estate " +
	"photo editor would. Keep the scene truthful: no structural changes, no added rooms. Instruction: "

// --- wire types for the generateContent REST API ---

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiTool struct {
	URLContext *struct{} `json:"urlContext,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

// quota markers the API uses for rate/resource refusals, alongside HTTP 429.
var quotaMarkers = []string{"RESOURCE_EXHAUSTED", "quota", "rate limit"}

func isRetryable(err error) bool {
	return common.IsTransientQuota(err)
}

// classifyUpstream folds the HTTP status and body into the error taxonomy:
// quota refusals become retryable, everything else stays fatal as-is.
func classifyUpstream(status int, body []byte, err error) error {
	if err == nil {
		return nil
	}
	if status == 429 {
		return fmt.Errorf("%w: status 429: %s", common.ErrTransientQuota, truncateBody(body))
	}
	text := string(body)
	for _, marker := range quotaMarkers {
		if strings.Contains(strings.ToLower(text), strings.ToLower(marker)) {
			return fmt.Errorf("%w: %s", common.ErrTransientQuota, truncateBody(body))
		}
	}
	return err
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "…"
	}
	return string(body)
}

// generate performs one generateContent call and decodes the envelope.
func (c *Client) generate(ctx context.Context, model string, reqBody geminiRequest) (*geminiResponse, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", strings.TrimRight(c.cfg.BaseURL, "/"), model, c.cfg.APIKey)

	raw, status, err := llm.SendJSON(ctx, c.http, url, reqBody, nil, c.logger)
	if err != nil {
		// Redact the key before the error can reach a log line.
		redacted := strings.ReplaceAll(err.Error(), c.cfg.APIKey, "REDACTED")
		return nil, classifyUpstream(status, raw, fmt.Errorf("gemini %s: %s", model, redacted))
	}

	var res geminiResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no content")
	}
	return &res, nil
}

func firstText(res *geminiResponse) string {
	for _, part := range res.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text
		}
	}
	return ""
}

// Suggest composes the prompt with the broker instruction and returns the
// model's trimmed answer. All failure paths collapse into the fallback
// string: this operation must never surface a raw error.
func (c *Client) Suggest(ctx context.Context, prompt string) string {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("llm.suggest.start", "req_id", rid, "model", c.cfg.TextModel, "prompt_len", len(prompt))

	req := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: suggestInstruction}}},
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}

	res, err := retry.Invoke(ctx, c.invoker, "gemini.suggest", c.policy, func(ctx context.Context) (*geminiResponse, error) {
		return c.generate(ctx, c.cfg.TextModel, req)
	})
	if err != nil {
		c.logger.Warn("llm.suggest.degraded",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return SuggestionFallback
	}

	text := strings.TrimSpace(firstText(res))
	if text == "" {
		c.logger.Warn("llm.suggest.empty", "req_id", rid)
		return SuggestionFallback
	}

	c.logger.Info("llm.suggest.ok", "req_id", rid, "chars", len(text), "elapsed_ms", time.Since(start).Milliseconds())
	return text
}

// ExtractFromURL asks the model to ground on the page at url and emit only a
// JSON object with the fixed listing field set. A response without a
// parseable payload yields an empty map; transport failures propagate so the
// caller can message the user.
func (c *Client) ExtractFromURL(ctx context.Context, url string) (map[string]any, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("llm.extract.start", "req_id", rid, "model", c.cfg.TextModel, "url", url)

	prompt := "Visit the property listing at " + url + " and extract its data. " +
		"Reply with ONLY a JSON object, no prose, with exactly these keys: " +
		`"title" (string), "type" (string), "price" (number), "address" (string), ` +
		`"area" (number, m²), "bedrooms" (integer), "bathrooms" (integer), ` +
		`"description" (string), "status" (string). Omit nothing; use "" or 0 when unknown.`

	req := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		Tools:    []geminiTool{{URLContext: &struct{}{}}},
	}

	res, err := retry.Invoke(ctx, c.invoker, "gemini.extract_url", c.policy, func(ctx context.Context) (*geminiResponse, error) {
		return c.generate(ctx, c.cfg.TextModel, req)
	})
	if err != nil {
		c.logger.Error("llm.extract.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("extract from url: %w", err)
	}

	extraction := llm.ExtractJSON(firstText(res))
	if !extraction.Matched {
		c.logger.Warn("llm.extract.no_payload", "req_id", rid, "raw_len", len(extraction.Raw))
		return map[string]any{}, nil
	}

	// Lenient validation pass: log schema offenders but leave semantic
	// enforcement to the persistence boundary.
	schema := llm.BuildListingJSONSchema(constants.PropertyTypesAsStrings())
	if doc, mErr := json.Marshal(extraction.Payload); mErr == nil {
		if vErr := llm.ValidateJSONAgainstSchema(schema, doc); vErr != nil {
			c.logger.Warn("llm.extract.schema_mismatch", "req_id", rid, "error", vErr)
		}
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid, "fields", len(extraction.Payload),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return extraction.Payload, nil
}

// EditImage sends the decoded image plus a rewritten instruction to the
// image-capable model and re-wraps the first inline binary part of the
// response as a data URI.
func (c *Client) EditImage(ctx context.Context, dataURI, instruction string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	mimeType, data, err := llm.ParseDataURI(dataURI)
	if err != nil {
		return "", err
	}
	c.logger.Info("llm.edit_image.start",
		"req_id", rid, "model", c.cfg.ImageModel,
		"mime_type", mimeType, "bytes", len(data),
	)

	req := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{
			{Text: editInstructionPrefix + instruction},
			{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}},
		}}},
		GenerationConfig: &geminiGenerationConfig{ResponseModalities: []string{"IMAGE", "TEXT"}},
	}

	res, err := retry.Invoke(ctx, c.invoker, "gemini.edit_image", c.policy, func(ctx context.Context) (*geminiResponse, error) {
		return c.generate(ctx, c.cfg.ImageModel, req)
	})
	if err != nil {
		c.logger.Error("llm.edit_image.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("edit image: %w", err)
	}

	for _, part := range res.Candidates[0].Content.Parts {
		if part.InlineData == nil || part.InlineData.Data == "" {
			continue
		}
		out, decErr := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if decErr != nil {
			return "", fmt.Errorf("decode inline image: %w", decErr)
		}
		c.logger.Info("llm.edit_image.ok",
			"req_id", rid, "mime_type", part.InlineData.MimeType, "bytes", len(out),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.FormatDataURI(part.InlineData.MimeType, out), nil
	}

	c.logger.Error("llm.edit_image.no_image", "req_id", rid)
	return "", common.NewAppError("NO_IMAGE_RETURNED", "model response had no inline image part", common.ErrNoImageReturned)
}
