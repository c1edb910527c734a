package productform

import (
	"errors"

	"github.com/matthieukhl/storefront/internal/models"
)

var (
	ErrDialogClosed = errors.New("product dialog is not open")
	ErrBusy         = errors.New("product dialog is already submitting")
)

// Phase is the dialog state.
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseOpen
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseOpen:
		return "open"
	case PhaseSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Dialog is the create/edit dialog:
//
//	Closed -> Open(create|edit) -> Submitting -> Closed
//	                ^                  |
//	                +---- failure -----+
//
// Validation failures keep it Open with field errors. A Dialog has one
// owner and is not safe for concurrent use.
type Dialog struct {
	phase  Phase
	form   Form
	fields FieldErrors
	err    error

	// submission counts Begin calls and survives Close
	submission uint64
}

// OpenCreate opens the dialog with a blank form.
func (d *Dialog) OpenCreate() {
	d.open(Form{})
}

// OpenEdit opens the dialog pre-filled with p.
func (d *Dialog) OpenEdit(p models.Product) {
	d.open(FromProduct(p))
}

func (d *Dialog) open(f Form) {
	d.phase = PhaseOpen
	d.form = f
	d.fields = nil
	d.err = nil
}

// Close discards the dialog. A pending submit is abandoned; its result is
// dropped by FinishSubmission.
func (d *Dialog) Close() {
	*d = Dialog{submission: d.submission}
}

// SetForm replaces the edited content. It is ignored unless the dialog
// is open.
func (d *Dialog) SetForm(f Form) {
	if d.phase == PhaseOpen {
		d.form = f
	}
}

// Begin validates the form and moves to Submitting. On validation failure
// the dialog stays open and a *ValidationError is returned.
func (d *Dialog) Begin(categories []string) (Form, error) {
	switch d.phase {
	case PhaseClosed:
		return Form{}, ErrDialogClosed
	case PhaseSubmitting:
		return Form{}, ErrBusy
	}

	if errs := Validate(d.form, categories); len(errs) > 0 {
		d.fields = errs
		d.err = &ValidationError{Fields: errs}
		return Form{}, d.err
	}
	d.fields = nil
	d.err = nil
	d.phase = PhaseSubmitting
	d.submission++
	return d.form, nil
}

// Submission identifies the submit started by the last successful Begin.
func (d *Dialog) Submission() uint64 { return d.submission }

// Fail reopens the dialog with field errors found outside Validate, such
// as unparseable numbers.
func (d *Dialog) Fail(fields FieldErrors) {
	if d.phase == PhaseClosed {
		return
	}
	d.phase = PhaseOpen
	d.fields = fields
	d.err = &ValidationError{Fields: fields}
}

// Finish ends the current submit: success closes the dialog, failure
// reopens it with the error. It reports whether the dialog was still
// submitting.
func (d *Dialog) Finish(err error) bool {
	return d.FinishSubmission(d.submission, err)
}

// FinishSubmission is Finish for the submit identified by id. Results of
// an earlier submit, abandoned by Close, are ignored.
func (d *Dialog) FinishSubmission(id uint64, err error) bool {
	if d.phase != PhaseSubmitting || id != d.submission {
		return false
	}
	if err == nil {
		d.Close()
		return true
	}
	d.phase = PhaseOpen
	d.err = err
	return true
}

func (d *Dialog) Phase() Phase { return d.phase }

func (d *Dialog) Form() Form { return d.form }

// IsEdit reports whether the open dialog edits an existing product.
func (d *Dialog) IsEdit() bool { return d.form.IsEdit() }

// FieldErrors are the errors from the last rejected submit.
func (d *Dialog) FieldErrors() FieldErrors { return d.fields }

// Err is the last submit error, validation or API.
func (d *Dialog) Err() error { return d.err }
