// Package raindrop saves finished books as bookmarks in a Raindrop.io
// collection.
package raindrop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"fable2md/internal/logger"
	"fable2md/pkg/models"
)

// DefaultBaseURL is the Raindrop.io REST endpoint.
const DefaultBaseURL = "https://api.raindrop.io/rest/v1"

const requestTimeout = 15 * time.Second

// Config carries the credentials and bookmark defaults.
type Config struct {
	Token        string
	CollectionID int
	Tags         []string
	BaseURL      string
}

// Client talks to the Raindrop.io API.
type Client struct {
	baseURL      string
	token        string
	collectionID int
	tags         []string
	httpClient   *http.Client
	log          zerolog.Logger
}

// NewClient creates a Raindrop client.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		baseURL:      base,
		token:        cfg.Token,
		collectionID: cfg.CollectionID,
		tags:         cfg.Tags,
		httpClient:   &http.Client{Timeout: requestTimeout},
		log:          logger.WithComponent("raindrop"),
	}
}

type createRequest struct {
	Link       string     `json:"link"`
	Title      string     `json:"title"`
	Excerpt    string     `json:"excerpt,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Cover      string     `json:"cover,omitempty"`
	Collection collection `json:"collection"`
}

type collection struct {
	ID int `json:"$id"`
}

type createResponse struct {
	Item struct {
		ID int64 `json:"_id"`
	} `json:"item"`
}

// SaveBook creates a bookmark for the record and returns the new
// raindrop ID.
func (c *Client) SaveBook(ctx context.Context, record models.BookRecord) (int64, error) {
	payload := createRequest{
		Link:       bookmarkLink(record),
		Title:      record.Title,
		Excerpt:    bookmarkExcerpt(record),
		Tags:       c.tags,
		Cover:      record.CoverURL,
		Collection: collection{ID: c.collectionID},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encoding raindrop payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/raindrop", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building raindrop request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("calling raindrop api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("raindrop api returned %d: %s", resp.StatusCode, string(snippet))
	}

	var decoded createResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("decoding raindrop response: %w", err)
	}

	c.log.Info().Str("title", record.Title).Int64("raindrop_id", decoded.Item.ID).
		Msg("Saved bookmark")
	return decoded.Item.ID, nil
}

// bookmarkLink prefers the Open Library edition page, then the ISBN
// lookup page, then a search URL.
func bookmarkLink(record models.BookRecord) string {
	if record.OpenLibraryID != "" {
		return fmt.Sprintf("https://openlibrary.org/books/%s", record.OpenLibraryID)
	}
	if record.ISBN13 != "" {
		return fmt.Sprintf("https://openlibrary.org/isbn/%s", record.ISBN13)
	}
	if record.ISBN10 != "" {
		return fmt.Sprintf("https://openlibrary.org/isbn/%s", record.ISBN10)
	}
	return "https://openlibrary.org/search?q=" + url.QueryEscape(record.Title)
}

func bookmarkExcerpt(record models.BookRecord) string {
	excerpt := "by " + record.Author
	if record.ISBN13 != "" {
		excerpt += " (ISBN " + record.ISBN13 + ")"
	}
	return excerpt
}
