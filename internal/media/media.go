// Package media holds the catalog record model shared by the catalog UI and the
// media API: the Record wire shape, its editable Fields, and the Page envelope
// returned by the list endpoint.
package media

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind is the media type of a record. Values are the strings used on the wire.
type Kind string

const (
	KindFilm   Kind = "Movie"
	KindSeries Kind = "TV Show"
)

// MinReleaseYear is the earliest accepted release year.
const MinReleaseYear = 1800

// Kinds lists the accepted kinds in display order.
func Kinds() []Kind { return []Kind{KindFilm, KindSeries} }

// Valid reports whether k is one of the accepted kinds.
func (k Kind) Valid() bool {
	return k == KindFilm || k == KindSeries
}

// Record is a media entry as served by the backend.
type Record struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Kind        Kind      `json:"type"`
	Director    string    `json:"director"`
	Budget      string    `json:"budget"`
	Location    string    `json:"location"`
	Duration    int       `json:"duration"`
	ReleaseYear int       `json:"year"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Fields returns the editable part of r.
func (r Record) Fields() Fields {
	return Fields{
		Title:       r.Title,
		Kind:        r.Kind,
		Director:    r.Director,
		Budget:      r.Budget,
		Location:    r.Location,
		Duration:    r.Duration,
		ReleaseYear: r.ReleaseYear,
	}
}

// Fields is the client-editable subset of a Record: everything except the
// identifier and the server timestamps.
type Fields struct {
	Title       string `json:"title"`
	Kind        Kind   `json:"type"`
	Director    string `json:"director"`
	Budget      string `json:"budget"`
	Location    string `json:"location"`
	Duration    int    `json:"duration"`
	ReleaseYear int    `json:"year"`
}

// FieldError reports the first field of a Fields value that breaks a record invariant.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the record invariants and returns a *FieldError for the first
// violation found, in form order.
func (f Fields) Validate() error {
	switch {
	case strings.TrimSpace(f.Title) == "":
		return &FieldError{Field: "title", Message: "Title is required"}
	case !f.Kind.Valid():
		return &FieldError{Field: "type", Message: "Type must be Movie or TV Show"}
	case strings.TrimSpace(f.Director) == "":
		return &FieldError{Field: "director", Message: "Director is required"}
	case strings.TrimSpace(f.Location) == "":
		return &FieldError{Field: "location", Message: "Location is required"}
	case f.Duration <= 0:
		return &FieldError{Field: "duration", Message: "Duration must be a positive number"}
	case f.ReleaseYear < MinReleaseYear:
		return &FieldError{Field: "year", Message: "Year must be a valid year after 1800"}
	}
	return nil
}

// Meta is the pagination block of a Page.
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Last reports whether the page described by m is the final one.
func (m Meta) Last() bool {
	return m.Page >= m.Pages
}

// Page is one slice of the catalog plus its pagination metadata.
type Page struct {
	Data []Record `json:"data"`
	Meta Meta     `json:"meta"`
}

// PageCount returns the number of pages needed for total records at limit per
// page. An empty catalog still has one (empty) page.
func PageCount(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

// ErrNotFound is returned when a record identifier does not exist.
var ErrNotFound = errors.New("media not found")
