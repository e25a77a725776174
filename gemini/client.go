// Package gemini wraps the generation service: the schema-constrained
// opening call, chat-style continuation over stored history, and segment
// translation.
package gemini

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"google.golang.org/genai"

	"lingotale/models"
)

// Generation temperatures tuned for variety on the opening and slightly
// steadier continuations.
const (
	openingTemperature      = 1.4
	continuationTemperature = 1.3
)

// ErrMalformedResponse reports a generation response that does not satisfy
// the requested schema.
var ErrMalformedResponse = errors.New("malformed generation response")

// ErrEmptyResponse reports a generation call that produced no text.
var ErrEmptyResponse = errors.New("empty generation response")

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create generation client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// openingSchema constrains the first generation call to strict
// {title, story, pool_words} JSON.
var openingSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":      {Type: genai.TypeString},
		"story":      {Type: genai.TypeString},
		"pool_words": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	PropertyOrdering: []string{"title", "story", "pool_words"},
}

// GenerateOpening runs the schema-constrained opening call and parses the
// strict JSON response. A response missing any required field fails with
// ErrMalformedResponse.
func (c *Client) GenerateOpening(ctx context.Context, prompt string) (*models.Opening, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   openingSchema,
			Temperature:      genai.Ptr[float32](openingTemperature),
		})
	if err != nil {
		return nil, fmt.Errorf("opening generation: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var opening models.Opening
	if err := json.Unmarshal([]byte(text), &opening); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if opening.Title == "" || opening.Story == "" || len(opening.PoolWords) == 0 {
		return nil, fmt.Errorf("%w: missing required fields", ErrMalformedResponse)
	}
	return &opening, nil
}

// ContinueChat replays the story's turn history and sends the next
// directive, returning the newly generated segment.
func (c *Client) ContinueChat(ctx context.Context, history []models.ContextTurn, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		var role genai.Role = genai.RoleUser
		if turn.Role == models.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}

	chat, err := c.client.Chats.Create(ctx, c.model,
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](continuationTemperature),
		}, contents)
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("continuation generation: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Translate runs a stateless translation call for one segment.
func (c *Client) Translate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, nil)
	if err != nil {
		return "", fmt.Errorf("translation generation: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
