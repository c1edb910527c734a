package server

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/matthieukhl/storefront/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownToken       = errors.New("unknown token")
)

type account struct {
	user         models.User
	passwordHash []byte
}

// Store keeps the stub API state in memory. Products keep insertion order,
// which is the order GET /api/products returns.
type Store struct {
	mu       sync.RWMutex
	products []models.Product
	accounts map[string]*account // by lower-cased email
	tokens   map[string]string   // token -> lower-cased email
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register adds an account. existed is true, and nothing changes, when the
// email is already registered.
func (s *Store) Register(req models.RegisterRequest) (user models.User, existed bool, err error) {
	key := emailKey(req.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if acc, ok := s.accounts[key]; ok {
		return acc.user, true, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, false, err
	}

	role := req.Role
	if role != models.RoleAdmin {
		role = models.RoleUser
	}
	user = models.User{
		ID:       uuid.NewString(),
		Username: req.Username,
		Email:    req.Email,
		Role:     role,
	}
	s.accounts[key] = &account{user: user, passwordHash: hash}
	return user, false, nil
}

// Login checks credentials and issues a new token.
func (s *Store) Login(email, password string) (string, models.User, error) {
	key := emailKey(email)

	s.mu.RLock()
	acc, ok := s.accounts[key]
	s.mu.RUnlock()
	if !ok {
		return "", models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return "", models.User{}, ErrInvalidCredentials
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = key
	s.mu.Unlock()
	return token, acc.user, nil
}

// UserForToken resolves a bearer token.
func (s *Store) UserForToken(token string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.tokens[token]
	if !ok {
		return models.User{}, ErrUnknownToken
	}
	acc, ok := s.accounts[key]
	if !ok {
		return models.User{}, ErrUnknownToken
	}
	return acc.user, nil
}

// Products returns a copy of the catalog.
func (s *Store) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) indexOf(id string) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Product returns the product with the given id.
func (s *Store) Product(id string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Product{}, ErrProductNotFound
	}
	return s.products[i], nil
}

// CreateProduct assigns an identifier and appends p to the catalog.
func (s *Store) CreateProduct(p models.Product) models.Product {
	p.ID = uuid.NewString()

	s.mu.Lock()
	s.products = append(s.products, p)
	s.mu.Unlock()
	return p
}

// UpdateProduct replaces the stored product with the same id.
func (s *Store) UpdateProduct(id string, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Product{}, ErrProductNotFound
	}
	p.ID = id
	s.products[i] = p
	return p, nil
}

// DeleteProduct removes the product with the given id.
func (s *Store) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrProductNotFound
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return nil
}
