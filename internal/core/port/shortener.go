package port

import "context"

type URLShortener interface {
	// Shorten returns a short link for url, using alias as the custom path when not empty.
	Shorten(ctx context.Context, url, alias string) (string, error)
}

type AccountFetcher interface {
	// FetchAccount retrieves the raw account document exposed by a third-party API.
	FetchAccount(ctx context.Context, url, apiKey string) (map[string]any, error)
}
