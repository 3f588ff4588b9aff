package shortener

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"pbpbot/internal/core/domain"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	DefaultEndpoint = "https://tinyurl.com/api-create.php"

	maxBodySize = 4 << 10
)

// TinyURL calls the plain text creation endpoint. The response body is the short link.
type TinyURL struct {
	endpoint string
	client   *http.Client
}

func NewTinyURL(endpoint string) *TinyURL {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &TinyURL{
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

func (t *TinyURL) Shorten(ctx context.Context, longURL, alias string) (string, error) {
	query := url.Values{}
	query.Set("url", longURL)
	if alias != "" {
		query.Set("alias", alias)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	res, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error executing request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		log.Debug().Int("status", res.StatusCode).Str("body", string(body)).Msg("tinyurl rejected request")
		return "", fmt.Errorf("%w: HTTP %d", domain.ErrUnexpectedStatus, res.StatusCode)
	}

	return strings.TrimSpace(string(body)), nil
}
