package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matthieukhl/storefront/internal/catalog"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/ui"
	"github.com/spf13/cobra"
)

var (
	listCategory string
	listSearch   string
	listPrice    string
	outputJSON   bool
)

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"product"},
	Short:   "Browse the catalog without the interactive UI",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products, optionally filtered",
	Long: `Fetch the whole catalog and print the products matching every filter.

  --category  exact product type, "All" for no filter
  --search    case-insensitive title substring
  --price     whole-number price, e.g. 19 matches 19.99; 0 means no filter`,
	Args: cobra.NoArgs,
	RunE: runProductsList,
}

var productsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductsShow,
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsListCmd, productsShowCmd)

	productsListCmd.Flags().StringVar(&listCategory, "category", models.CategoryAll, "filter by product type")
	productsListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "filter by title")
	productsListCmd.Flags().StringVar(&listPrice, "price", "", "filter by whole-number price")
	productsCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print JSON instead of a table")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runProductsList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	token := ""
	if a.session.IsAdmin() {
		token = a.session.Token()
	}
	products, err := a.fetcher.FetchAll(cmd.Context(), token)
	if err != nil {
		return err
	}

	criteria := catalog.Criteria{
		Category: listCategory,
		Search:   listSearch,
		Price:    catalog.ParsePrice(listPrice),
	}
	visible := catalog.Apply(products, criteria)

	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), visible)
	}

	out := cmd.OutOrStdout()
	if len(visible) == 0 {
		if len(products) == 0 {
			fmt.Fprintln(out, "📭 The catalog is empty")
		} else {
			fmt.Fprintf(out, "📭 No products match (%d in catalog)\n", len(products))
		}
		return nil
	}

	title := fmt.Sprintf("Products (%d of %d)", len(visible), len(products))
	fmt.Fprint(out, ui.ProductTable(title, visible, true).View(ui.DefaultStyles()))
	return nil
}

func runProductsShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.client.GetProduct(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), p)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "📦 %s\n", p.Title)
	fmt.Fprintf(out, "   ID:       %s\n", p.ID)
	fmt.Fprintf(out, "   Type:     %s\n", p.ProductType)
	fmt.Fprintf(out, "   Price:    %s\n", models.FormatPrice(p.Price))
	fmt.Fprintf(out, "   In stock: %d\n", p.AvailableQuantity)
	fmt.Fprintf(out, "   Image:    %s\n", p.ImageURL())
	if p.Description != "" {
		fmt.Fprintf(out, "\n%s\n", p.Description)
	}
	return nil
}
