package form

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/example/media-catalog/internal/media"
	"github.com/example/media-catalog/services/catalog-ui/internal/mediaapi"
)

// ErrClosed is returned by Submit when the form is not open.
var ErrClosed = errors.New("form: not open")

// ErrBusy is returned by Submit while another submission is running.
var ErrBusy = errors.New("form: submission in progress")

// Saver persists records.
type Saver interface {
	Create(ctx context.Context, f media.Fields) (media.Record, error)
	Update(ctx context.Context, id string, f media.Fields) (media.Record, error)
}

// Result is a saved record and whether it was newly created.
type Result struct {
	Record  media.Record
	Created bool
}

// State is what the view renders.
type State struct {
	Open       bool
	Editing    *media.Record
	Draft      Draft
	Error      string
	ErrorField string
	Submitting bool
}

type Form struct {
	api Saver
	log *zap.Logger

	mu         sync.Mutex
	open       bool
	editing    *media.Record
	draft      Draft
	errMsg     string
	errField   string
	submitting bool
}

func New(api Saver, log *zap.Logger) *Form {
	if log == nil {
		log = zap.NewNop()
	}
	return &Form{api: api, log: log, draft: NewDraft()}
}

// OpenCreate opens an empty form.
func (f *Form) OpenCreate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
	f.editing = nil
	f.draft = NewDraft()
	f.clearError()
}

// OpenEdit opens the form prefilled from r.
func (f *Form) OpenEdit(r media.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
	f.editing = &r
	f.draft = DraftFrom(r)
	f.clearError()
}

// Close hides the form and discards the draft.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.editing = nil
	f.draft = NewDraft()
	f.clearError()
}

func (f *Form) SetDraft(d Draft) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = d
}

func (f *Form) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := State{
		Open:       f.open,
		Draft:      f.draft,
		Error:      f.errMsg,
		ErrorField: f.errField,
		Submitting: f.submitting,
	}
	if f.editing != nil {
		r := *f.editing
		st.Editing = &r
	}
	return st
}

// Submit validates the draft and creates or updates the record. Validation
// failures never reach the network. On failure the draft is kept and the
// error is shown on the form; on success the form closes.
func (f *Form) Submit(ctx context.Context) (Result, error) {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return Result{}, ErrClosed
	}
	if f.submitting {
		f.mu.Unlock()
		return Result{}, ErrBusy
	}
	draft := f.draft
	var editing *media.Record
	if f.editing != nil {
		r := *f.editing
		editing = &r
	}

	fields, err := draft.Fields()
	if err != nil {
		var fve *FormValidationError
		if errors.As(err, &fve) {
			f.errField = fve.Field
		}
		f.errMsg = err.Error()
		f.mu.Unlock()
		return Result{}, err
	}
	f.submitting = true
	f.clearError()
	f.mu.Unlock()

	var res Result
	if editing == nil {
		res.Record, err = f.api.Create(ctx, fields)
		res.Created = true
	} else {
		res.Record, err = f.api.Update(ctx, editing.ID, fields)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.errMsg = mediaapi.Message(err)
		f.log.Warn("media save failed",
			zap.Bool("create", editing == nil),
			zap.Int("status", mediaapi.Status(err)),
			zap.Error(err),
		)
		return Result{}, err
	}

	f.open = false
	f.editing = nil
	f.draft = NewDraft()
	return res, nil
}

func (f *Form) clearError() {
	f.errMsg = ""
	f.errField = ""
}
