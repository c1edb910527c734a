package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matthieukhl/storefront/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the catalog interactively",
	Long: `Open the interactive storefront: filter products by category, title and
price, view details, log in or sign up, and manage products as an admin.

Logins and logouts done from another terminal are picked up live.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	model := ui.New(ctx, ui.Deps{
		Catalog:  a.fetcher,
		Source:   a.client,
		Session:  a.session,
		Products: a.forms,
		Logger:   logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		err := a.session.Watch(ctx, a.db.Path(), func() {
			program.Send(ui.SessionChangedMsg{})
		})
		if err != nil {
			logger.Warn("session watch stopped", zap.Error(err))
		}
	}()

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("interactive UI failed: %w", err)
	}
	return nil
}
