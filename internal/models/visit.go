package models

import "time"

// Visit is one row of the append-only visit log.
type Visit struct {
	ID        string    `json:"id"`
	Page      string    `json:"page"`
	Source    string    `json:"source"` // cli, http
	Remote    string    `json:"remote,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	VisitedAt time.Time `json:"visited_at"`
}

// Visit sources.
const (
	VisitSourceCLI  = "cli"
	VisitSourceHTTP = "http"
)

// PageCount is the number of visits recorded for one page.
type PageCount struct {
	Page  string `json:"page"`
	Count int64  `json:"count"`
}
