package cmd

import (
	"errors"
	"fmt"

	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/productform"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var productInput productform.Input

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage products (admin session required)",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a product",
	Args:  cobra.NoArgs,
	RunE:  runAdminCreate,
}

var adminUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a product; only the given fields change",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminUpdate,
}

var adminDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminDelete,
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminCreateCmd, adminUpdateCmd, adminDeleteCmd)

	for _, c := range []*cobra.Command{adminCreateCmd, adminUpdateCmd} {
		addProductFlags(c.Flags())
	}
}

func addProductFlags(fs *pflag.FlagSet) {
	fs.StringVar(&productInput.Title, "title", "", "product title")
	fs.StringVar(&productInput.Description, "description", "", "product description")
	fs.StringVar(&productInput.Price, "price", "", "price, greater than 0")
	fs.StringVar(&productInput.AvailableQuantity, "quantity", "", "available quantity")
	fs.StringVar(&productInput.ProductType, "type", "", "product type (one of the configured categories)")
	fs.StringVar(&productInput.Image, "image", "", "image URL")
}

// overlay copies the flags given on the command line onto the stored
// product's input.
func overlay(fs *pflag.FlagSet, base productform.Input) productform.Input {
	set := map[string]*string{
		"title":       &base.Title,
		"description": &base.Description,
		"price":       &base.Price,
		"quantity":    &base.AvailableQuantity,
		"type":        &base.ProductType,
		"image":       &base.Image,
	}
	given := map[string]string{
		"title":       productInput.Title,
		"description": productInput.Description,
		"price":       productInput.Price,
		"quantity":    productInput.AvailableQuantity,
		"type":        productInput.ProductType,
		"image":       productInput.Image,
	}
	for name, dst := range set {
		if fs.Changed(name) {
			*dst = given[name]
		}
	}
	return base
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	return submitProduct(cmd, a, nil, productInput)
}

func runAdminUpdate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	existing, err := a.client.GetProduct(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	in := overlay(cmd.Flags(), productform.InputFromForm(productform.FromProduct(*existing)))
	return submitProduct(cmd, a, existing, in)
}

// submitProduct runs the product dialog: open for create or edit, submit,
// and report field errors the way the dialog would show them.
func submitProduct(cmd *cobra.Command, a *app, existing *models.Product, in productform.Input) error {
	var dialog productform.Dialog
	if existing != nil {
		dialog.OpenEdit(*existing)
	} else {
		dialog.OpenCreate()
	}

	form, fieldErrs := in.ParseAndValidate(a.forms.Categories())
	form.ID = dialog.Form().ID
	if len(fieldErrs) > 0 {
		return printFieldErrors(cmd, fieldErrs)
	}
	dialog.SetForm(form)

	saved, err := a.forms.Submit(cmd.Context(), &dialog)
	var verr *productform.ValidationError
	if errors.As(err, &verr) {
		return printFieldErrors(cmd, verr.Fields)
	}
	if err != nil && saved == nil {
		return err
	}

	verb := "Created"
	if existing != nil {
		verb = "Updated"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s %s (%s)\n", verb, saved.Title, saved.ID)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %v\n", err)
		return nil
	}
	a.reportCatalog(cmd.OutOrStdout())
	return nil
}

func printFieldErrors(cmd *cobra.Command, fields productform.FieldErrors) error {
	fmt.Fprintln(cmd.ErrOrStderr(), "❌ Invalid product:")
	for _, f := range fields.Fields() {
		fmt.Fprintf(cmd.ErrOrStderr(), "   • %s: %s\n", f, fields[f])
	}
	return &productform.ValidationError{Fields: fields}
}

func runAdminDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.forms.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted %s\n", args[0])
	a.reportCatalog(cmd.OutOrStdout())
	return nil
}
