package server

import (
	"fmt"
	"io"
	"os"

	"github.com/matthieukhl/storefront/internal/models"
	"gopkg.in/yaml.v3"
)

// Seed is the YAML document used to pre-populate the stub API.
//
//	users:
//	  - {username: admin, email: admin@example.com, password: secret, role: admin}
//	products:
//	  - {title: Blue Speaker, price: 19.99, product_type: Speaker, available_quantity: 3}
type Seed struct {
	Users    []SeedUser       `yaml:"users"`
	Products []models.Product `yaml:"products"`
}

type SeedUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// DecodeSeed parses a seed document.
func DecodeSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	return &seed, nil
}

// LoadSeedFile reads a seed document from disk.
func LoadSeedFile(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return DecodeSeed(f)
}

// Apply loads the seed into s. Product identifiers in the seed are replaced.
func (s *Store) Apply(seed *Seed) error {
	for _, u := range seed.Users {
		_, _, err := s.Register(models.RegisterRequest{
			Role:     u.Role,
			Username: u.Username,
			Email:    u.Email,
			Password: u.Password,
		})
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
	}
	for _, p := range seed.Products {
		s.CreateProduct(p)
	}
	return nil
}
