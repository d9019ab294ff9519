package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"mostviewed/internal/models"
)

// PseudoEntries is the number of non-article rows ("Main Page" and the
// search placeholder) the ranking always contains.
const PseudoEntries = 2

var errMissingMostViewed = errors.New("response has no query.mostviewed list")

type mostViewedResponse struct {
	Query *struct {
		MostViewed []models.TopArticle `json:"mostviewed"`
	} `json:"query"`
}

// MostViewedParams returns the ranking request for n articles.
func MostViewedParams(n int) url.Values {
	return url.Values{
		"action":    {"query"},
		"format":    {"json"},
		"list":      {"mostviewed"},
		"pvimlimit": {strconv.Itoa(n + PseudoEntries)},
	}
}

// MostViewed returns the raw ranking for n articles. It asks for n+2 entries
// and does not filter the pseudo-entries.
func (c *Client) MostViewed(ctx context.Context, n int) ([]models.TopArticle, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}

	var resp mostViewedResponse

	raw := rawCapture{target: &resp}
	if err := c.Query(ctx, MostViewedParams(n), "Most Viewed Articles", &raw); err != nil {
		return nil, err
	}

	if resp.Query == nil || resp.Query.MostViewed == nil {
		return nil, &ParseError{Label: "Most Viewed Articles", Payload: raw.payload, Err: errMissingMostViewed}
	}

	c.logger.Info(fmt.Sprintf("📥 Ranking returned %d entries", len(resp.Query.MostViewed)))

	return resp.Query.MostViewed, nil
}
