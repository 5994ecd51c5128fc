// Package tagging derives journal tags from a transcript with the Gemini
// generateContent API. Results are restricted to a controlled vocabulary.
package tagging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/rooznegar/internal/common"
	"github.com/dmitrijs2005/rooznegar/internal/logging"
	"google.golang.org/genai"
)

const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com/"
	DefaultAPIVersion = "v1beta"
	DefaultModel      = "gemini-2.5-flash"
	DefaultTimeout    = 15 * time.Second
)

type Config struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	Model      string
	Timeout    time.Duration
}

// Client calls generateContent. It is safe for concurrent use.
type Client struct {
	cfg    Config
	vocab  Vocabulary
	http   *http.Client
	logger logging.Logger
}

func NewClient(cfg Config, vocab Vocabulary, l logging.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:    cfg,
		vocab:  vocab,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: l.With("module", "tagging"),
	}
}

// Vocabulary returns the tags this client may assign.
func (c *Client) Vocabulary() Vocabulary {
	return c.vocab
}

// Tags returns the vocabulary terms relevant to text. Blank text returns an
// empty list without a call. Every failure returns an empty list and an
// error wrapping common.ErrService.
func (c *Client) Tags(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return []string{}, fmt.Errorf("%w: GEMINI_API_KEY is not configured", common.ErrService)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     c.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.http,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    c.cfg.BaseURL,
			APIVersion: c.cfg.APIVersion,
		},
	})
	if err != nil {
		return []string{}, fmt.Errorf("%w: %w", common.ErrService, err)
	}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(c.Prompt(text)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	})
	if err != nil {
		return []string{}, fmt.Errorf("%w: generate content: %w", common.ErrService, err)
	}

	tags, err := c.parseResponse(resp)
	if err != nil {
		return []string{}, fmt.Errorf("%w: %w", common.ErrService, err)
	}

	c.logger.Debug(ctx, "tags derived", "count", len(tags))
	return tags, nil
}

// Prompt builds the instruction sent with text.
func (c *Client) Prompt(text string) string {
	vocab, _ := json.Marshal(c.vocab.Tags())
	return fmt.Sprintf(`You are a text analysis assistant for a driver's log app in Persian.
Analyze the following text from a driver's recording and assign relevant tags from the provided list.
The output must be a JSON array of strings, containing only the relevant tags.
If no tags are relevant, return an empty array.

Available tags: %s

Text:
%q

JSON Output:`, vocab, text)
}

func (c *Client) parseResponse(resp *genai.GenerateContentResponse) ([]string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("response has no candidates")
	}
	return ValidateTags([]byte(resp.Text()), c.vocab)
}

// ValidateTags accepts only a JSON array whose items are all strings drawn
// from vocab. Repeated items are collapsed; order is kept.
func ValidateTags(raw []byte, vocab Vocabulary) ([]string, error) {
	var items []any
	if err := json.Unmarshal(bytes.TrimSpace(raw), &items); err != nil {
		return nil, fmt.Errorf("payload is not a JSON array: %w", err)
	}
	if items == nil {
		return nil, fmt.Errorf("payload is not a JSON array")
	}

	tags := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("item %d is not a string", i)
		}
		if !vocab.Contains(s) {
			return nil, fmt.Errorf("item %d %q is outside the vocabulary", i, s)
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		tags = append(tags, s)
	}
	return tags, nil
}
