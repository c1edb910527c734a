// Package server is an in-memory implementation of the storefront REST API.
// It backs `storefront stub-api` for local development and the client tests;
// production deployments talk to the real API.
package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/storefront/internal/models"
	"go.uber.org/zap"
)

const userKey = "user"

type Server struct {
	router *gin.Engine
	store  *Store
	logger *zap.Logger
}

// NewServer creates a new server instance
func NewServer(store *Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	server := &Server{
		router: router,
		store:  store,
		logger: logger.Named("stub-api"),
	}
	router.Use(gin.Recovery(), server.requestLogger())

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	auth := s.router.Group("/auth")
	{
		auth.POST("/login", s.login)
		auth.POST("/register", s.register)
	}

	products := s.router.Group("/api/products")
	{
		products.GET("", s.listProducts)
		products.GET("/:id", s.getProduct)
		products.POST("", s.requireAdmin, s.createProduct)
		products.PUT("/:id", s.requireAdmin, s.updateProduct)
		products.DELETE("/:id", s.requireAdmin, s.deleteProduct)
	}
}

// Handler exposes the router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "storefront-stub-api",
		"products": len(s.store.Products()),
	})
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	token, user, err := s.store.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Token:    token,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
		ID:       user.ID,
	})
}

func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.Email == "" || req.Password == "" || req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username, email and password are required"})
		return
	}

	user, existed, err := s.store.Register(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if existed {
		c.JSON(http.StatusOK, models.RegisterResponse{Email: user.Email, AlreadyExists: true})
		return
	}

	c.JSON(http.StatusCreated, models.RegisterResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	})
}

// requireAdmin rejects requests without an admin bearer token.
func (s *Server) requireAdmin(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
		return
	}

	user, err := s.store.UserForToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
		return
	}
	if !user.IsAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "admin role required"})
		return
	}

	c.Set(userKey, user)
	c.Next()
}

// actor is the admin set by requireAdmin.
func actor(c *gin.Context) string {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(models.User); ok {
			return user.Email
		}
	}
	return ""
}

func (s *Server) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Products())
}

func (s *Server) getProduct(c *gin.Context) {
	product, err := s.store.Product(c.Param("id"))
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) createProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	created := s.store.CreateProduct(product)
	s.logger.Info("product created", zap.String("id", created.ID), zap.String("by", actor(c)))
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	updated, err := s.store.UpdateProduct(c.Param("id"), product)
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	s.logger.Info("product updated", zap.String("id", updated.ID), zap.String("by", actor(c)))
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.store.DeleteProduct(c.Param("id")); err != nil {
		s.writeStoreError(c, err)
		return
	}
	s.logger.Info("product deleted", zap.String("id", c.Param("id")), zap.String("by", actor(c)))
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

func (s *Server) writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
}
