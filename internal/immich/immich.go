// Immich HTTP API client
//
// Endpoint semantics based on https://immich.app/docs/api/
package immich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/immich-screens/internal/shared"
)

// MaxSearchPageSize is the largest page size /search/metadata accepts.
const MaxSearchPageSize = 1000

// fallbackVersion is the newest version released before the server-info
// version endpoint existed; assumed when the probe returns 404.
var fallbackVersion = ServerVersion{Major: 1, Minor: 105, Patch: 1}

// Client is a typed HTTP client for the Immich API.
// Authentication uses a static x-api-key header on every request.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client for the given root API URL and API key.
// The URL is normalized to end with a slash so endpoints can be appended directly.
func NewClient(baseURL, apiKey string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: client,
	}
}

// newRequest builds an authenticated request for the given endpoint, JSON-encoding body when non-nil.
func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// doRequest performs an authenticated request and decodes the JSON response into result.
// Any non-2xx status is surfaced as an error wrapping [shared.ErrAPIRequest].
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: status %d: %s", shared.ErrAPIRequest, method, endpoint, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ServerVersion probes the server-info version endpoint.
//
// The endpoint only exists from 1.106.1 on; a 404 means an older server, in
// which case the fallback version is returned with detected=false. Any status
// other than 200 or 404 is an error.
func (c *Client) ServerVersion(ctx context.Context) (ServerVersion, bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "server-info/version", nil)
	if err != nil {
		return ServerVersion{}, false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ServerVersion{}, false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var version ServerVersion
		if err := json.NewDecoder(resp.Body).Decode(&version); err != nil {
			return ServerVersion{}, false, fmt.Errorf("failed to decode response: %w", err)
		}
		return version, true, nil
	case http.StatusNotFound:
		return fallbackVersion, false, nil
	default:
		return ServerVersion{}, false, fmt.Errorf("%w: GET server-info/version: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}
}

// Libraries returns the full library listing.
func (c *Client) Libraries(ctx context.Context) ([]Library, error) {
	var libraries []Library
	if err := c.doRequest(ctx, http.MethodGet, "libraries", nil, &libraries); err != nil {
		return nil, err
	}
	return libraries, nil
}

// searchMetadataRequest is the /search/metadata request body for one page.
type searchMetadataRequest struct {
	Type      string `json:"type"`
	IsOffline bool   `json:"isOffline"`
	WithExif  bool   `json:"withExif"`
	LibraryID string `json:"libraryId,omitempty"`
	Size      int    `json:"size"`
	Page      int    `json:"page"`
}

type searchMetadataResponse struct {
	Assets struct {
		Items []Asset `json:"items"`
	} `json:"assets"`
}

// SearchAssets fetches one page of image assets via metadata search.
// The page size is clamped to [MaxSearchPageSize]. An empty libraryID means unscoped.
func (c *Client) SearchAssets(ctx context.Context, page, size int, withExif bool, libraryID string) ([]Asset, error) {
	if size > MaxSearchPageSize {
		size = MaxSearchPageSize
	}

	body := searchMetadataRequest{
		Type:      "IMAGE",
		IsOffline: false,
		WithExif:  withExif,
		LibraryID: libraryID,
		Size:      size,
		Page:      page,
	}

	var response searchMetadataResponse
	if err := c.doRequest(ctx, http.MethodPost, "search/metadata", body, &response); err != nil {
		return nil, err
	}

	return response.Assets.Items, nil
}

// Albums returns all albums visible to the API key.
func (c *Client) Albums(ctx context.Context) ([]Album, error) {
	var albums []Album
	if err := c.doRequest(ctx, http.MethodGet, "albums", nil, &albums); err != nil {
		return nil, err
	}
	return albums, nil
}

// CreateAlbum creates an album with the given name (also used as the
// description) and returns its id.
func (c *Client) CreateAlbum(ctx context.Context, name string) (string, error) {
	body := map[string]string{
		"albumName":   name,
		"description": name,
	}

	var response struct {
		ID string `json:"id"`
	}

	if err := c.doRequest(ctx, http.MethodPost, "albums", body, &response); err != nil {
		return "", err
	}

	return response.ID, nil
}

// AddAssets adds the given asset ids to an album in a single call and returns
// the per-asset results. The server tolerates duplicates, reporting them as
// failed results with reason [BulkErrorDuplicate].
func (c *Client) AddAssets(ctx context.Context, albumID string, assetIDs []string) ([]BulkIDResult, error) {
	body := map[string][]string{"ids": assetIDs}

	var results []BulkIDResult
	if err := c.doRequest(ctx, http.MethodPut, "albums/"+albumID+"/assets", body, &results); err != nil {
		return nil, err
	}

	return results, nil
}

// SetArchived sets an asset's archive flag and returns the server-confirmed value.
func (c *Client) SetArchived(ctx context.Context, assetID string, archived bool) (bool, error) {
	body := map[string]bool{"isArchived": archived}

	var response struct {
		IsArchived bool `json:"isArchived"`
	}

	if err := c.doRequest(ctx, http.MethodPut, "assets/"+assetID, body, &response); err != nil {
		return false, err
	}

	return response.IsArchived, nil
}
