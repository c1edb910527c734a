package productform

import (
	"context"
	"errors"
	"testing"

	"github.com/matthieukhl/storefront/internal/api"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validForm() Form {
	return Form{
		Title:             "Blue Speaker",
		Description:       "Loud and blue",
		Price:             19.99,
		AvailableQuantity: 0,
		ProductType:       models.CategorySpeaker,
		Image:             "https://example.com/speaker.png",
	}
}

func TestValidate(t *testing.T) {
	categories := models.DefaultCategories()

	tests := []struct {
		name   string
		modify func(f *Form)
		fields []string
	}{
		{"valid", func(f *Form) {}, nil},
		{"zero price", func(f *Form) { f.Price = 0 }, []string{FieldPrice}},
		{"negative price", func(f *Form) { f.Price = -1 }, []string{FieldPrice}},
		{"negative quantity", func(f *Form) { f.AvailableQuantity = -1 }, []string{FieldAvailableQuantity}},
		{"blank text", func(f *Form) {
			f.Title = " "
			f.Description = ""
			f.Image = "\t"
		}, []string{FieldDescription, FieldImage, FieldTitle}},
		{"missing type", func(f *Form) { f.ProductType = "" }, []string{FieldProductType}},
		{"unknown type", func(f *Form) { f.ProductType = "Car" }, []string{FieldProductType}},
		{"all is not a type", func(f *Form) { f.ProductType = models.CategoryAll }, []string{FieldProductType}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.modify(&f)
			errs := Validate(f, categories)
			if tt.fields == nil {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.fields, errs.Fields())
		})
	}
}

func TestInputParse(t *testing.T) {
	in := Input{Title: "T", Description: "D", Image: "I", ProductType: " Watch ", Price: "12.5", AvailableQuantity: "3"}
	f, errs := in.ParseAndValidate(models.DefaultCategories())
	assert.Empty(t, errs)
	assert.Equal(t, 12.5, f.Price)
	assert.Equal(t, 3, f.AvailableQuantity)
	assert.Equal(t, models.CategoryWatch, f.ProductType)

	_, errs = Input{Price: "cheap", AvailableQuantity: "1.5"}.ParseAndValidate(nil)
	assert.Equal(t, "price must be a number", errs[FieldPrice])
	assert.Equal(t, "available quantity must be a whole number", errs[FieldAvailableQuantity])

	round := InputFromForm(validForm())
	assert.Equal(t, "19.99", round.Price)
	assert.Equal(t, "0", round.AvailableQuantity)
}

func TestDialog_Transitions(t *testing.T) {
	categories := models.DefaultCategories()
	var d Dialog
	assert.Equal(t, PhaseClosed, d.Phase())

	_, err := d.Begin(categories)
	assert.ErrorIs(t, err, ErrDialogClosed)

	d.OpenCreate()
	assert.Equal(t, PhaseOpen, d.Phase())
	assert.False(t, d.IsEdit())

	// Invalid form stays open with field errors
	_, err = d.Begin(categories)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, FieldTitle)
	assert.Equal(t, PhaseOpen, d.Phase())
	assert.Contains(t, d.FieldErrors(), FieldPrice)

	d.SetForm(validForm())
	f, err := d.Begin(categories)
	require.NoError(t, err)
	assert.Equal(t, "Blue Speaker", f.Title)
	assert.Equal(t, PhaseSubmitting, d.Phase())
	assert.Empty(t, d.FieldErrors())

	_, err = d.Begin(categories)
	assert.ErrorIs(t, err, ErrBusy)

	// Failure returns to Open keeping the form
	assert.True(t, d.Finish(errors.New("server down")))
	assert.Equal(t, PhaseOpen, d.Phase())
	assert.EqualError(t, d.Err(), "server down")
	assert.Equal(t, "Blue Speaker", d.Form().Title)

	_, err = d.Begin(categories)
	require.NoError(t, err)
	assert.True(t, d.Finish(nil))
	assert.Equal(t, PhaseClosed, d.Phase())
	assert.False(t, d.Finish(nil))
}

func TestDialog_EditAndAbandon(t *testing.T) {
	var d Dialog
	d.OpenEdit(models.Product{ID: "p1", Title: "Old"})
	assert.True(t, d.IsEdit())
	assert.Equal(t, "Old", d.Form().Title)

	d.Close()
	d.SetForm(validForm())
	assert.Equal(t, Form{}, d.Form())

	d.OpenEdit(models.Product{ID: "p1"})
	d.Fail(FieldErrors{FieldPrice: "price must be a number"})
	assert.Equal(t, PhaseOpen, d.Phase())
	assert.Contains(t, d.Err().Error(), "price must be a number")
}

type call struct {
	method string
	token  string
	id     string
}

type recordingWriter struct {
	calls []call
	err   error
}

func (w *recordingWriter) CreateProduct(ctx context.Context, token string, p models.Product) (*models.Product, error) {
	w.calls = append(w.calls, call{"create", token, p.ID})
	if w.err != nil {
		return nil, w.err
	}
	p.ID = "new-id"
	return &p, nil
}

func (w *recordingWriter) UpdateProduct(ctx context.Context, token string, p models.Product) (*models.Product, error) {
	w.calls = append(w.calls, call{"update", token, p.ID})
	if w.err != nil {
		return nil, w.err
	}
	return &p, nil
}

func (w *recordingWriter) DeleteProduct(ctx context.Context, token, id string) error {
	w.calls = append(w.calls, call{"delete", token, id})
	return w.err
}

type staticToken struct {
	token string
	err   error
}

func (s staticToken) AdminToken() (string, error) { return s.token, s.err }

func newController(t *testing.T, w Writer, tokens TokenSource, refreshes *int) *Controller {
	return NewController(w, tokens, models.DefaultCategories(), zaptest.NewLogger(t),
		WithRefresh(func(ctx context.Context) error {
			*refreshes++
			return nil
		}))
}

func TestSubmit_CreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	w := &recordingWriter{}
	refreshes := 0
	c := newController(t, w, staticToken{token: "admin-token"}, &refreshes)

	var d Dialog
	d.OpenCreate()
	d.SetForm(validForm())
	saved, err := c.Submit(ctx, &d)
	require.NoError(t, err)
	assert.Equal(t, "new-id", saved.ID)
	assert.Equal(t, PhaseClosed, d.Phase())

	d.OpenEdit(*saved)
	_, err = c.Submit(ctx, &d)
	require.NoError(t, err)

	assert.Equal(t, []call{
		{"create", "admin-token", ""},
		{"update", "admin-token", "new-id"},
	}, w.calls)
	assert.Equal(t, 2, refreshes)
}

func TestSubmit_PriceZeroIsRejectedLocally(t *testing.T) {
	w := &recordingWriter{}
	refreshes := 0
	c := newController(t, w, staticToken{token: "t"}, &refreshes)

	var d Dialog
	d.OpenCreate()
	f := validForm()
	f.Price = 0
	d.SetForm(f)

	_, err := c.Submit(context.Background(), &d)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{FieldPrice}, verr.Fields.Fields())
	assert.Empty(t, w.calls)
	assert.Zero(t, refreshes)
}

func TestSubmit_APIFailureReopens(t *testing.T) {
	apiErr := &api.Error{Kind: api.KindServer, Op: "POST /api/products", Status: 500}
	w := &recordingWriter{err: apiErr}
	refreshes := 0
	c := newController(t, w, staticToken{token: "t"}, &refreshes)

	var d Dialog
	d.OpenCreate()
	d.SetForm(validForm())
	_, err := c.Submit(context.Background(), &d)
	assert.True(t, api.IsKind(err, api.KindServer))
	assert.Equal(t, PhaseOpen, d.Phase())
	assert.ErrorIs(t, d.Err(), apiErr)
	assert.Zero(t, refreshes)
}

func TestSubmit_RequiresAdmin(t *testing.T) {
	w := &recordingWriter{}
	refreshes := 0
	c := newController(t, w, staticToken{err: session.ErrNotAdmin}, &refreshes)

	var d Dialog
	d.OpenCreate()
	d.SetForm(validForm())
	_, err := c.Submit(context.Background(), &d)
	assert.ErrorIs(t, err, session.ErrNotAdmin)
	assert.Empty(t, w.calls)
	assert.Equal(t, PhaseOpen, d.Phase())

	err = c.Delete(context.Background(), "p1")
	assert.ErrorIs(t, err, session.ErrNotAdmin)
	assert.Empty(t, w.calls)
}

func TestDialog_AbandonedSubmissionIgnored(t *testing.T) {
	var d Dialog
	d.OpenCreate()
	d.SetForm(validForm())
	_, err := d.Begin(models.DefaultCategories())
	require.NoError(t, err)
	first := d.Submission()

	d.Close()
	d.OpenCreate()
	d.SetForm(validForm())
	_, err = d.Begin(models.DefaultCategories())
	require.NoError(t, err)
	second := d.Submission()
	require.NotEqual(t, first, second)

	assert.False(t, d.FinishSubmission(first, nil))
	assert.Equal(t, PhaseSubmitting, d.Phase())

	apiErr := errors.New("boom")
	assert.True(t, d.FinishSubmission(second, apiErr))
	assert.Equal(t, PhaseOpen, d.Phase())
	assert.Equal(t, apiErr, d.Err())
}

func TestDelete_RefreshFailure(t *testing.T) {
	w := &recordingWriter{}
	c := NewController(w, staticToken{token: "t"}, models.DefaultCategories(), zaptest.NewLogger(t),
		WithRefresh(func(ctx context.Context) error {
			return errors.New("offline")
		}))

	err := c.Delete(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, "failed to refresh catalog: offline", err.Error())
	assert.Equal(t, []call{{"delete", "t", "p1"}}, w.calls)
}

func TestDelete(t *testing.T) {
	w := &recordingWriter{}
	refreshes := 0
	c := newController(t, w, staticToken{token: "t"}, &refreshes)

	require.NoError(t, c.Delete(context.Background(), "p1"))
	assert.Equal(t, []call{{"delete", "t", "p1"}}, w.calls)
	assert.Equal(t, 1, refreshes)

	assert.Error(t, c.Delete(context.Background(), ""))
}
