// Package models defines data structures shared by the fetcher, store and renderer.
package models

import "time"

// TopArticle is one entry of the most-viewed ranking as returned by the API.
type TopArticle struct {
	Title string `json:"title"`
	Count int64  `json:"count"`
	NS    int    `json:"ns"`
}

// Article is the record persisted for each fetched topic.
type Article struct {
	FetchedAt  time.Time `json:"fetchedAt"`
	LastEditor *string   `json:"lastEditor,omitempty"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Content    string    `json:"content"`
	ViewsCount int64     `json:"viewsCount"`
}

// RankedArticle is one row of the display query.
type RankedArticle struct {
	FetchedAt      time.Time `json:"fetchedAt"`
	LastEditor     *string   `json:"lastEditor"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	ViewsFormatted string    `json:"viewsFormatted"`
	Rank           int       `json:"rank"`
	ViewsCount     int64     `json:"viewsCount"`
}

// Editor returns the last editor or an empty string when absent.
func (r RankedArticle) Editor() string {
	if r.LastEditor == nil {
		return ""
	}

	return *r.LastEditor
}
