// Package firestore is a minimal client for the Cloud Firestore REST API:
// upsert, create, get, list and delete of documents made of typed fields.
package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/smartpool/internal/common"
	"github.com/dmitrijs2005/smartpool/internal/logging"
	"github.com/dmitrijs2005/smartpool/internal/netx"
)

// DefaultBaseURL is the REST root; the project's document path is
// appended to it.
const DefaultBaseURL = "https://firestore.googleapis.com/v1"

// StatusError is a non-2xx reply.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("firestore: status %d: %s", e.Status, strings.TrimSpace(e.Body))
}

type Config struct {
	BaseURL    string
	ProjectID  string
	APIKey     string
	HTTPClient *http.Client
}

type Client struct {
	docsURL string
	apiKey  string
	http    *http.Client
	log     logging.Logger
}

// New builds a client. Without a project id or API key every call
// returns common.ErrRemoteDisabled.
func New(cfg Config, log logging.Logger) *Client {
	c := &Client{
		apiKey: cfg.APIKey,
		http:   cfg.HTTPClient,
		log:    log.With("component", "firestore"),
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}

	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if cfg.ProjectID != "" {
		c.docsURL = strings.TrimRight(base, "/") + "/projects/" + url.PathEscape(cfg.ProjectID) + "/databases/(default)/documents"
	}
	return c
}

// Enabled reports whether the client has credentials to talk to the server.
func (c *Client) Enabled() bool {
	return c.docsURL != "" && c.apiKey != ""
}

func (c *Client) url(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", c.apiKey)
	return c.docsURL + "/" + strings.Trim(path, "/") + "?" + query.Encode()
}

type document struct {
	Name   string          `json:"name,omitempty"`
	Fields json.RawMessage `json:"fields,omitempty"`
}

type writeBody struct {
	Fields Fields `json:"fields"`
}

func (c *Client) do(ctx context.Context, method, u, token string, body any) (*netx.Response, error) {
	if !c.Enabled() {
		return nil, common.ErrRemoteDisabled
	}

	resp, err := netx.DoJSON(ctx, c.http, method, u, token, body)
	if err != nil {
		return nil, fmt.Errorf("firestore %s: %w", method, err)
	}
	if !resp.OK() {
		return nil, &StatusError{Status: resp.StatusCode, Body: string(resp.Body)}
	}
	return resp, nil
}

// Save upserts the document collection/docID with exactly fields.
func (c *Client) Save(ctx context.Context, collection, docID string, fields Fields, token string) error {
	if docID == "" {
		return errors.New("firestore: save requires a document id")
	}
	if fields == nil {
		fields = Fields{}
	}

	if _, err := c.do(ctx, http.MethodPatch, c.url(collection+"/"+url.PathEscape(docID), nil), token, writeBody{Fields: fields}); err != nil {
		return err
	}
	c.log.Debug(ctx, "document saved", "collection", collection, "doc_id", docID)
	return nil
}

// Create adds a document with a server-generated id and returns that id.
func (c *Client) Create(ctx context.Context, collection string, fields Fields, token string) (string, error) {
	if fields == nil {
		fields = Fields{}
	}

	resp, err := c.do(ctx, http.MethodPost, c.url(collection, nil), token, writeBody{Fields: fields})
	if err != nil {
		return "", err
	}

	var doc document
	if err := resp.Decode(&doc); err != nil {
		return "", err
	}
	id := doc.Name[strings.LastIndex(doc.Name, "/")+1:]
	c.log.Debug(ctx, "document created", "collection", collection, "doc_id", id)
	return id, nil
}

// Get reads one document. A missing document is common.ErrNotFound.
func (c *Client) Get(ctx context.Context, collection, docID, token string) (Fields, error) {
	resp, err := c.do(ctx, http.MethodGet, c.url(collection+"/"+url.PathEscape(docID), nil), token, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc document
	if err := resp.Decode(&doc); err != nil {
		return nil, err
	}
	return decodeFields(doc.Fields)
}

// Delete removes a document. Deleting a missing document succeeds.
func (c *Client) Delete(ctx context.Context, collection, docID, token string) error {
	if _, err := c.do(ctx, http.MethodDelete, c.url(collection+"/"+url.PathEscape(docID), nil), token, nil); err != nil {
		return err
	}
	c.log.Debug(ctx, "document deleted", "collection", collection, "doc_id", docID)
	return nil
}

type listResponse struct {
	Documents     []document `json:"documents"`
	NextPageToken string     `json:"nextPageToken"`
}

// List returns the fields of every document in collection, following
// pagination. Documents whose fields cannot be decoded are skipped.
func (c *Client) List(ctx context.Context, collection, token string) ([]Fields, error) {
	var out []Fields
	pageToken := ""

	for {
		q := url.Values{}
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		resp, err := c.do(ctx, http.MethodGet, c.url(collection, q), token, nil)
		if err != nil {
			return nil, err
		}

		var page listResponse
		if err := resp.Decode(&page); err != nil {
			return nil, err
		}

		for _, doc := range page.Documents {
			fields, err := decodeFields(doc.Fields)
			if err != nil {
				c.log.Warn(ctx, "skipping undecodable document", "name", doc.Name, "error", err)
				continue
			}
			out = append(out, fields)
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	c.log.Debug(ctx, "documents listed", "collection", collection, "count", len(out))
	return out, nil
}

func decodeFields(raw json.RawMessage) (Fields, error) {
	fields := Fields{}
	if len(raw) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
