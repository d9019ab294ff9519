package wiki

import (
	"context"
	"fmt"
	"net/url"
	"sort"
)

type revisionsResponse struct {
	Query struct {
		Pages map[string]struct {
			Title     string `json:"title"`
			Revisions []struct {
				User string `json:"user"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

// RevisionParams returns the single-revision lookup for title.
func RevisionParams(title string) url.Values {
	return url.Values{
		"action":  {"query"},
		"format":  {"json"},
		"prop":    {"revisions"},
		"titles":  {title},
		"rvprop":  {"user"},
		"rvdir":   {"newer"},
		"rvlimit": {"1"},
	}
}

// LastEditor returns the author of the single revision returned for title in
// "newer" direction. ok is false when the page has no revisions.
func (c *Client) LastEditor(ctx context.Context, title string) (editor string, ok bool, err error) {
	c.logger.Info(fmt.Sprintf("Extracting Revisions for Article: %s", title))

	var resp revisionsResponse
	if err := c.Query(ctx, RevisionParams(title), "Last Article Editor", &resp); err != nil {
		return "", false, err
	}

	// Only one title is requested; sort for a stable pick anyway.
	ids := make([]string, 0, len(resp.Query.Pages))
	for id := range resp.Query.Pages {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	for _, id := range ids {
		revisions := resp.Query.Pages[id].Revisions
		if len(revisions) == 0 {
			continue
		}

		c.logger.Info(fmt.Sprintf("Last Editor Identified for Article: %s", title))

		return revisions[0].User, true, nil
	}

	c.logger.Debug("no revisions found", "title", title)

	return "", false, nil
}
