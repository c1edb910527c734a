package cmd

import (
	"fmt"

	"github.com/matthieukhl/storefront/internal/productform"
	"github.com/matthieukhl/storefront/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importReplace bool
	importDryRun  bool
)

var adminImportCmd = &cobra.Command{
	Use:   "import <seed.yaml>",
	Short: "Create the products of a seed file through the API",
	Long: `Read the products section of a seed file and create each product
through the API with the admin session. Users in the file are ignored.

Every product is validated first; nothing is sent if any is invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdminImport,
}

func init() {
	adminCmd.AddCommand(adminImportCmd)

	adminImportCmd.Flags().BoolVar(&importReplace, "replace", false, "delete every existing product first")
	adminImportCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "validate only")
}

func runAdminImport(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "📦 Importing products from %s...\n", args[0])

	seed, err := server.LoadSeedFile(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	forms := make([]productform.Form, 0, len(seed.Products))
	invalid := 0
	for i, p := range seed.Products {
		f := productform.FromProduct(p)
		f.ID = ""
		if errs := productform.Validate(f, a.forms.Categories()); len(errs) > 0 {
			invalid++
			fmt.Fprintf(cmd.ErrOrStderr(), "   ❌ #%d %q: %s\n", i+1, p.Title, (&productform.ValidationError{Fields: errs}).Error())
			continue
		}
		forms = append(forms, f)
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d products are invalid", invalid, len(seed.Products))
	}
	if importDryRun {
		fmt.Fprintf(out, "✅ %d products are valid\n", len(forms))
		return nil
	}

	if _, err := a.session.AdminToken(); err != nil {
		return err
	}

	if importReplace {
		fmt.Fprintln(out, "🗑️  Deleting existing products...")
		existing, err := a.fetcher.FetchAll(cmd.Context(), a.session.Token())
		if err != nil {
			return err
		}
		for _, p := range existing {
			if err := a.forms.Remove(cmd.Context(), p.ID); err != nil {
				return fmt.Errorf("failed to delete %s: %w", p.ID, err)
			}
		}
		fmt.Fprintf(out, "   Deleted %d\n", len(existing))
	}

	for i, f := range forms {
		saved, err := a.forms.Save(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("failed to create %q after %d of %d: %w", f.Title, i, len(forms), err)
		}
		logger.Debug("imported product", zap.String("id", saved.ID), zap.String("title", saved.Title))
		fmt.Fprintf(out, "   ✅ %s (%s)\n", saved.Title, saved.ID)
	}

	if err := a.forms.Refresh(cmd.Context()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %v\n", err)
	}
	fmt.Fprintf(out, "🎉 Imported %d products\n", len(forms))
	a.reportCatalog(out)
	return nil
}
