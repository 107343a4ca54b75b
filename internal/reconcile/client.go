package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"readshelf/internal/models"
)

const DefaultPageSize = 100

// Client reads the listing and the catalog through the server's HTTP API.
type Client struct {
	baseURL       string
	adminUsername string
	pageSize      int
	httpClient    *http.Client
}

// NewClient creates a client for the server at baseURL. adminUsername is
// sent as X-Admin-Username when set.
func NewClient(baseURL, adminUsername string, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		adminUsername: adminUsername,
		pageSize:      pageSize,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

var _ Source = (*Client)(nil)

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.adminUsername != "" {
		req.Header.Set("X-Admin-Username", c.adminUsername)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

type listPage struct {
	PDFs *[]struct {
		ID string `json:"id"`
	} `json:"pdfs"`
	HasMore bool `json:"has_more"`
}

// FetchDriveIDs walks /api/list-pdfs page by page until has_more is false
// and returns the ids in page order.
func (c *Client) FetchDriveIDs(ctx context.Context, folderID string) ([]string, error) {
	ids := []string{}
	path := "/api/list-pdfs/" + url.PathEscape(folderID)

	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("page_size", strconv.Itoa(c.pageSize))

		var lp listPage
		if err := c.getJSON(ctx, path, q, &lp); err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if lp.PDFs == nil {
			return nil, fmt.Errorf("page %d: malformed listing: no pdfs field", page)
		}
		for i, f := range *lp.PDFs {
			if f.ID == "" {
				return nil, fmt.Errorf("page %d: malformed listing: entry %d has no id", page, i)
			}
			ids = append(ids, f.ID)
		}

		if !lp.HasMore {
			return ids, nil
		}
		if len(*lp.PDFs) == 0 {
			return nil, fmt.Errorf("page %d: listing reports more pages but returned none", page)
		}
	}
}

type catalogResponse struct {
	Success bool          `json:"success"`
	Books   []models.Book `json:"books"`
	Error   string        `json:"error"`
}

func (c *Client) FetchCatalog(ctx context.Context) ([]models.Book, error) {
	var cr catalogResponse
	if err := c.getJSON(ctx, "/api/all-books", nil, &cr); err != nil {
		return nil, err
	}
	if !cr.Success {
		return nil, fmt.Errorf("catalog request failed: %s", cr.Error)
	}
	return cr.Books, nil
}
