package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"writer_digest_bot/internal/domain/digest"

	"github.com/mmcdole/gofeed"
)

var ErrNoEntries = fmt.Errorf("feed has no entries")

// FeedClient fetches headlines from a single RSS/Atom feed.
type FeedClient struct {
	httpClient *http.Client
	feedURL    string
	fp         *gofeed.Parser
}

func NewFeedClient(httpClient *http.Client, feedURL string) *FeedClient {
	return &FeedClient{
		httpClient: httpClient,
		feedURL:    feedURL,
		fp:         gofeed.NewParser(),
	}
}

// Top returns at most limit entries in feed order.
func (c *FeedClient) Top(ctx context.Context, limit int) ([]digest.Headline, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return nil, fmt.Errorf("want 200, got %d: %s", res.StatusCode, body)
	}

	feed, err := c.fp.Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %q: %w", c.feedURL, err)
	}

	headlines := make([]digest.Headline, 0, limit)
	for _, item := range feed.Items {
		if len(headlines) == limit {
			break
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		headlines = append(headlines, digest.Headline{Title: title, Link: item.Link})
	}
	if len(headlines) == 0 {
		return nil, ErrNoEntries
	}
	return headlines, nil
}
