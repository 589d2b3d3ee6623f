// Package catalog talks to the external product-catalog service that owns the
// product → classification-group relation. Calls are bounded by a short
// timeout and fail closed; callers degrade enrichment instead of hanging.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 3 * time.Second

// Client is the catalog HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a catalog client. A non-positive timeout falls back to
// the default 3s bound.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GroupForProduct resolves a product code to its classification group id.
// An unknown product yields ("", nil); transport and server failures are
// returned as errors for the caller to degrade on.
func (c *Client) GroupForProduct(ctx context.Context, codigoProduto string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/produtos/"+url.PathEscape(codigoProduto), nil)
	if err != nil {
		return "", fmt.Errorf("criando requisição ao catálogo: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("catálogo de produtos indisponível: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("catálogo de produtos retornou status %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			CodigoProduto string `json:"codigo_produto"`
			GrupoID       string `json:"grupo_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decodificando resposta do catálogo: %w", err)
	}
	return result.Data.GrupoID, nil
}
