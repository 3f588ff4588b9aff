package account

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"pbpbot/internal/core/domain"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const userAgent = "Discord-Bot/1.0"

// HTTPFetcher reads an account document from any bearer authenticated JSON endpoint.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher builds a fetcher. A zero timeout leaves the deadline to the caller's context.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) FetchAccount(ctx context.Context, url, apiKey string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		log.Debug().Int("status", res.StatusCode).Str("body", strings.TrimSpace(string(b))).Msg("account endpoint rejected request")
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrUnexpectedStatus, res.StatusCode)
	}

	var doc map[string]any
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidResponse, err)
	}
	if doc == nil {
		return nil, domain.ErrInvalidResponse
	}

	return doc, nil
}
