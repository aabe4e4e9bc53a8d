package api

import (
	"time"

	"golang.org/x/text/language"

	"github.com/eugenenazirov/bundle-optimizer/internal/bundle"
	"github.com/eugenenazirov/bundle-optimizer/internal/catalog"
)

var summaryLanguage = language.English

type itemRequest struct {
	Name   string `json:"name"`
	Cost   int    `json:"cost"`
	Profit int    `json:"profit"`
}

type capacityRequest struct {
	Capacity int `json:"capacity"`
}

// optimizeRequest fields are optional; nil falls back to the workspace.
type optimizeRequest struct {
	Items    *[]itemRequest `json:"items"`
	Capacity *int           `json:"capacity"`
}

type itemsResponse struct {
	Items      []catalog.Entry `json:"items"`
	Capacity   int             `json:"capacity"`
	TotalItems int             `json:"totalItems"`
}

type capacityResponse struct {
	Capacity  int       `json:"capacity"`
	UpdatedAt time.Time `json:"updatedAt"`
	Message   string    `json:"message,omitempty"`
}

type lastRunResponse struct {
	Report  bundle.Report `json:"report"`
	Summary string        `json:"summary"`
	RanAt   time.Time     `json:"ranAt"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}
