// Package qloo is the client for the recommendation/insight API: entity
// search, entity detail, tag affinity insights and cross-domain lookups.
package qloo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"

	"lingotale/models"
	"lingotale/taxonomy"
)

// SearchEntityTypes restricts searches to the media the app can profile.
const SearchEntityTypes = "urn:entity:movie,urn:entity:tv_show,urn:entity:book"

// EntityTagFilter selects the insight tag types requested for a liked entity.
const EntityTagFilter = "urn:tag:characteristic:qloo,urn:tag:genre:media,urn:tag:archetype:qloo," +
	"urn:tag:audience:qloo,urn:tag:character:qloo,urn:tag:keyword:qloo,urn:tag:plot:qloo," +
	"urn:tag:style:qloo,urn:tag:subgenre:qloo,urn:tag:theme:qloo"

// CrossEntityTagFilter selects the insight tag types requested for
// cross-domain entities.
const CrossEntityTagFilter = "urn:tag:characteristic:qloo,urn:tag:archetype:qloo," +
	"urn:tag:character:qloo,urn:tag:plot:qloo,urn:tag:style:qloo,urn:tag:subgenre:qloo"

// errNoResult marks a 400 from a cross-domain lookup: the API has no entity
// of that type for the signal, which is an empty result, not a failure.
var errNoResult = errors.New("no cross-domain result")

// UpstreamError reports a non-2xx response from the recommendation API. The
// upstream body is logged, never carried to callers.
type UpstreamError struct {
	Operation string
	Status    int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("recommendation API %s failed with status %d", e.Operation, e.Status)
}

// Client calls the recommendation API. All requests carry the API key header
// and run through a circuit breaker so a struggling upstream sheds load fast.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name: "qloo",
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, errNoResult)
			},
		}),
	}
}

type entityPayload struct {
	EntityID   string   `json:"entity_id"`
	Name       string   `json:"name"`
	Types      []string `json:"types"`
	Subtype    string   `json:"subtype"`
	Properties struct {
		Image struct {
			URL string `json:"url"`
		} `json:"image"`
		ReleaseYear      int    `json:"release_year"`
		PublicationYear  int    `json:"publication_year"`
		Description      string `json:"description"`
		ShortDescription string `json:"short_description"`
	} `json:"properties"`
	Tags []struct {
		Type string `json:"type"`
		Name string `json:"name"`
	} `json:"tags"`
}

func (p *entityPayload) releaseYear() int {
	if p.Properties.ReleaseYear != 0 {
		return p.Properties.ReleaseYear
	}
	return p.Properties.PublicationYear
}

func (p *entityPayload) entityType() string {
	if len(p.Types) > 0 {
		return taxonomy.StripEntityURN(p.Types[0])
	}
	return "N/A"
}

// Search looks up media entities matching the query. Results without a name
// or an image are dropped.
func (c *Client) Search(ctx context.Context, query string) ([]models.EntitySummary, error) {
	params := url.Values{
		"query":   {query},
		"types":   {SearchEntityTypes},
		"page":    {"1"},
		"sort_by": {"match"},
	}
	body, err := c.get(ctx, "/search", params, false)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Results []entityPayload `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := []models.EntitySummary{}
	for _, entity := range payload.Results {
		if entity.Name == "" || entity.Properties.Image.URL == "" {
			continue
		}
		results = append(results, models.EntitySummary{
			ID:          entity.EntityID,
			Name:        entity.Name,
			ImageURL:    entity.Properties.Image.URL,
			Type:        entity.entityType(),
			ReleaseYear: entity.releaseYear(),
		})
	}
	return results, nil
}

// EntityDetail is the full record of one entity plus its raw tags.
type EntityDetail struct {
	Info models.EntityInfo
	Tags []models.RawTag
}

// Entity fetches the full record for one entity id.
func (c *Client) Entity(ctx context.Context, entityID string) (*EntityDetail, error) {
	body, err := c.get(ctx, "/entities", url.Values{"entity_ids": {entityID}}, false)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Results []entityPayload `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode entity response: %w", err)
	}
	if len(payload.Results) == 0 {
		return nil, fmt.Errorf("entity %s not found upstream", entityID)
	}

	entity := payload.Results[0]
	detail := &EntityDetail{
		Info: models.EntityInfo{
			EntityID:         entity.EntityID,
			Name:             entity.Name,
			ImageURL:         entity.Properties.Image.URL,
			Type:             entity.entityType(),
			ReleaseYear:      entity.releaseYear(),
			Description:      entity.Properties.Description,
			ShortDescription: entity.Properties.ShortDescription,
		},
	}
	for _, tag := range entity.Tags {
		detail.Tags = append(detail.Tags, models.RawTag{Key: tag.Type, Value: tag.Name})
	}
	return detail, nil
}

// InsightTags returns the affinity tags of an entity, keyed by tag subtype.
func (c *Client) InsightTags(ctx context.Context, entityID, tagTypes string) ([]models.RawTag, error) {
	params := url.Values{
		"filter.type":               {"urn:tag"},
		"signal.interests.entities": {entityID},
		"filter.tag.types":          {tagTypes},
		"take":                      {"25"},
	}
	body, err := c.get(ctx, "/v2/insights/", params, false)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Results struct {
			Tags []struct {
				Subtype string `json:"subtype"`
				Name    string `json:"name"`
			} `json:"tags"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode insight response: %w", err)
	}

	tags := []models.RawTag{}
	for _, tag := range payload.Results.Tags {
		tags = append(tags, models.RawTag{Key: tag.Subtype, Value: tag.Name})
	}
	return tags, nil
}

// CrossEntity is the strongest related entity of another domain.
type CrossEntity struct {
	EntityID string
	Subtype  string
	Tags     []models.RawTag
}

// CrossDomainEntity returns the top related entity of the given type, or nil
// when the API reports none (a 400 response).
func (c *Client) CrossDomainEntity(ctx context.Context, entityID, entityType string) (*CrossEntity, error) {
	params := url.Values{
		"filter.type":               {entityType},
		"signal.interests.entities": {entityID},
		"take":                      {"1"},
		"page":                      {"1"},
	}
	body, err := c.get(ctx, "/v2/insights/", params, true)
	if errors.Is(err, errNoResult) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var payload struct {
		Results struct {
			Entities []entityPayload `json:"entities"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode cross-domain response: %w", err)
	}
	if len(payload.Results.Entities) == 0 {
		return nil, nil
	}

	entity := payload.Results.Entities[0]
	cross := &CrossEntity{EntityID: entity.EntityID, Subtype: entity.Subtype}
	for _, tag := range entity.Tags {
		cross.Tags = append(cross.Tags, models.RawTag{Key: tag.Type, Value: tag.Name})
	}
	return cross, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, tolerateBadRequest bool) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.baseURL+path+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("X-Api-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("recommendation API %s: %w", path, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}

		if resp.StatusCode == http.StatusBadRequest && tolerateBadRequest {
			return nil, errNoResult
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			log.Error().
				Str("path", path).
				Int("status", resp.StatusCode).
				Str("body", string(body)).
				Msg("recommendation API error")
			return nil, &UpstreamError{Operation: path, Status: resp.StatusCode}
		}
		return body, nil
	})
}
