package cmd

import (
	"fmt"

	"github.com/matthieukhl/storefront/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	stubAddr string
	stubSeed string
)

var stubAPICmd = &cobra.Command{
	Use:   "stub-api",
	Short: "Serve an in-memory catalog API for local development",
	Long: `Start an in-memory implementation of the catalog API:
- POST /auth/login, POST /auth/register
- GET /api/products, GET /api/products/:id
- POST, PUT and DELETE on /api/products (admin bearer token required)

Data lives only as long as the process. Use --seed to preload users and
products from a YAML file.`,
	Args: cobra.NoArgs,
	RunE: runStubAPI,
}

func init() {
	rootCmd.AddCommand(stubAPICmd)

	stubAPICmd.Flags().StringVar(&stubAddr, "addr", "", "listen address (default from server.addr)")
	stubAPICmd.Flags().StringVar(&stubSeed, "seed", "", "YAML seed file (default from server.seed_file)")
}

func runStubAPI(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 Storefront stub API starting...")

	addr := cfg.Server.Addr
	if stubAddr != "" {
		addr = stubAddr
	}
	seedFile := cfg.Server.SeedFile
	if stubSeed != "" {
		seedFile = stubSeed
	}

	store := server.NewStore()
	if seedFile != "" {
		fmt.Printf("🌱 Loading seed %s...\n", seedFile)
		seed, err := server.LoadSeedFile(seedFile)
		if err != nil {
			return err
		}
		if err := store.Apply(seed); err != nil {
			return err
		}
		logger.Info("seed loaded",
			zap.String("file", seedFile),
			zap.Int("users", len(seed.Users)),
			zap.Int("products", len(seed.Products)))
	}

	srv := server.NewServer(store, logger)

	fmt.Printf("🌐 Listening on %s\n", addr)
	if err := srv.Start(addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
