// Package form holds the create/edit record form: the draft being typed, its
// validation, and submission through the media API.
package form

import (
	"errors"
	"strconv"
	"strings"

	"github.com/example/media-catalog/internal/media"
)

// Draft is the form contents as typed. Numeric fields stay text until
// validation.
type Draft struct {
	Title       string
	Kind        string
	Director    string
	Budget      string
	Location    string
	Duration    string
	ReleaseYear string
}

// NewDraft returns the empty create-mode draft.
func NewDraft() Draft {
	return Draft{Kind: string(media.KindFilm)}
}

// DraftFrom prefills a draft from an existing record.
func DraftFrom(r media.Record) Draft {
	return Draft{
		Title:       r.Title,
		Kind:        string(r.Kind),
		Director:    r.Director,
		Budget:      r.Budget,
		Location:    r.Location,
		Duration:    strconv.Itoa(r.Duration),
		ReleaseYear: strconv.Itoa(r.ReleaseYear),
	}
}

// FormValidationError is the first client-side validation failure.
type FormValidationError struct {
	Field   string
	Message string
}

func (e *FormValidationError) Error() string { return e.Message }

// Fields converts the draft and checks it, returning a *FormValidationError
// for the first bad field.
func (d Draft) Fields() (media.Fields, error) {
	f := media.Fields{
		Title:       strings.TrimSpace(d.Title),
		Kind:        media.Kind(strings.TrimSpace(d.Kind)),
		Director:    strings.TrimSpace(d.Director),
		Budget:      strings.TrimSpace(d.Budget),
		Location:    strings.TrimSpace(d.Location),
		Duration:    parseWhole(d.Duration),
		ReleaseYear: parseWhole(d.ReleaseYear),
	}
	if err := f.Validate(); err != nil {
		var fe *media.FieldError
		if errors.As(err, &fe) {
			return media.Fields{}, &FormValidationError{Field: fe.Field, Message: fe.Message}
		}
		return media.Fields{}, err
	}
	return f, nil
}

// parseWhole returns 0 for anything that is not a base-10 integer, which the
// record checks then reject.
func parseWhole(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
