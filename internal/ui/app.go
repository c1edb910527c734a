package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matthieukhl/storefront/internal/api"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/productform"
	"github.com/matthieukhl/storefront/internal/session"
	"go.uber.org/zap"
)

// Catalog fetches the full product collection.
type Catalog interface {
	FetchAll(ctx context.Context, token string) ([]models.Product, error)
}

// ProductSource loads a single product for the detail screen.
type ProductSource interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// Session is the authenticated identity shown and changed by the UI.
type Session interface {
	Login(ctx context.Context, email, password string) (models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
	Logout(ctx context.Context) error
	Current() (models.User, bool)
	Token() string
	IsAdmin() bool
	AuthError() error
}

// Products saves and deletes products for admins.
type Products interface {
	Save(ctx context.Context, f productform.Form) (*models.Product, error)
	Remove(ctx context.Context, id string) error
	Categories() []string
}

// Deps are the services the UI drives.
type Deps struct {
	Catalog  Catalog
	Source   ProductSource
	Session  Session
	Products Products
	Logger   *zap.Logger
}

type screen int

const (
	screenBrowse screen = iota
	screenDetail
	screenLogin
	screenRegister
	screenDialog
)

// SessionChangedMsg tells the UI the persisted session was changed by
// another process.
type SessionChangedMsg struct{}

type catalogMsg struct {
	seq      uint64
	products []models.Product
	err      error
}

type productMsg struct {
	id      string
	product *models.Product
	err     error
}

type loginMsg struct {
	user models.User
	err  error
}

type logoutMsg struct{ err error }

type authBannerExpiredMsg struct{}

type registerMsg struct {
	email string
	resp  *models.RegisterResponse
	err   error
}

type savedMsg struct {
	submission uint64
	product    *models.Product
	err        error
}

type deletedMsg struct {
	id  string
	err error
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	deps   Deps
	logger *zap.Logger
	styles Styles

	width  int
	height int
	screen screen

	browse   browseView
	detail   detailView
	login    loginView
	register registerView
	dialog   dialogView
	spinner  spinner.Model

	status     string
	statusKind statusKind
}

// New builds the root model. ctx bounds every request the UI issues.
func New(ctx context.Context, deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	styles := DefaultStyles()
	s.Style = styles.Spinner

	return Model{
		ctx:      ctx,
		deps:     deps,
		logger:   logger.Named("ui"),
		styles:   styles,
		screen:   screenBrowse,
		browse:   newBrowseView(deps.Products.Categories()),
		login:    newLoginView(),
		register: newRegisterView(),
		dialog:   newDialogView(),
		spinner:  s,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.spinner.Tick)
}

// fetch starts a catalog fetch. Admins send their token.
func (m Model) fetch() tea.Cmd {
	seq := m.browse.state.BeginFetch()
	token := ""
	if m.deps.Session.IsAdmin() {
		token = m.deps.Session.Token()
	}
	ctx, fetcher := m.ctx, m.deps.Catalog
	return func() tea.Msg {
		products, err := fetcher.FetchAll(ctx, token)
		return catalogMsg{seq: seq, products: products, err: err}
	}
}

func (m *Model) setStatus(kind statusKind, format string, args ...any) {
	m.statusKind = kind
	m.status = fmt.Sprintf(format, args...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.browse.setSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case catalogMsg:
		if msg.err != nil {
			if m.browse.state.Failed(msg.seq, msg.err) {
				m.logger.Warn("catalog fetch failed", zap.Error(msg.err))
			}
		} else if m.browse.state.Loaded(msg.seq, msg.products) {
			m.logger.Debug("catalog loaded", zap.Int("count", len(msg.products)))
		}
		m.browse.syncTable()
		return m, nil

	case productMsg:
		if m.screen == screenDetail && m.detail.product.ID == msg.id {
			if msg.err != nil {
				m.detail.err = msg.err
			} else {
				m.detail.product = *msg.product
				m.detail.err = nil
			}
		}
		return m, nil

	case loginMsg:
		m.login.pending = false
		if msg.err != nil {
			m.login.password.SetValue("")
			return m, tea.Tick(session.AuthErrorDisplay, func(time.Time) tea.Msg { return authBannerExpiredMsg{} })
		}
		m.login.reset()
		m.screen = screenBrowse
		m.setStatus(statusSuccess, "Logged in as %s", msg.user.Email)
		return m, m.fetch()

	case authBannerExpiredMsg:
		return m, nil

	case logoutMsg:
		if msg.err != nil {
			m.setStatus(statusError, "Logout failed: %v", msg.err)
			return m, nil
		}
		m.dialog.close()
		if m.screen == screenDialog {
			m.screen = screenBrowse
		}
		m.setStatus(statusInfo, "Logged out")
		return m, m.fetch()

	case registerMsg:
		return m.handleRegistered(msg)

	case savedMsg:
		return m.handleSaved(msg)

	case deletedMsg:
		if msg.err != nil {
			m.setStatus(statusError, "Delete failed: %s", errorText(msg.err))
			return m, nil
		}
		m.setStatus(statusSuccess, "Product deleted")
		if m.screen == screenDetail && m.detail.product.ID == msg.id {
			m.screen = screenBrowse
		}
		return m, m.fetch()

	case SessionChangedMsg:
		if m.screen == screenDialog && !m.deps.Session.IsAdmin() {
			m.dialog.close()
			m.screen = screenBrowse
		}
		return m, m.fetch()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenDetail:
			return m.updateDetail(msg)
		case screenLogin:
			return m.updateLogin(msg)
		case screenRegister:
			return m.updateRegister(msg)
		case screenDialog:
			return m.updateDialog(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenDetail:
		body = m.viewDetail()
	case screenLogin:
		body = m.viewLogin()
	case screenRegister:
		body = m.viewRegister()
	case screenDialog:
		body = m.viewDialog()
	default:
		body = m.viewBrowse()
	}

	parts := []string{m.viewHeader(), m.styles.Content.Render(body)}
	if m.status != "" {
		style := m.styles.Info
		switch m.statusKind {
		case statusSuccess:
			style = m.styles.Success
		case statusError:
			style = m.styles.Error
		}
		parts = append(parts, m.styles.Footer.Render(style.Render(m.status)))
	}
	parts = append(parts, m.styles.Footer.Render(m.help()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewHeader() string {
	who := "guest"
	if user, ok := m.deps.Session.Current(); ok {
		who = user.Email
		if user.IsAdmin() {
			who += " (admin)"
		}
	}
	return m.styles.Header.Render("Storefront") + "  " + m.styles.Muted.Render(who)
}

func (m Model) help() string {
	switch m.screen {
	case screenDetail:
		if m.deps.Session.IsAdmin() {
			return "esc back • e edit • d delete"
		}
		return "esc back"
	case screenLogin, screenRegister:
		return "tab next field • enter submit • esc back"
	case screenDialog:
		return "tab next field • ctrl+t cycle type • ctrl+s save • esc cancel"
	}
	if m.browse.focus != focusTable {
		return "enter/esc done"
	}
	keys := []string{"/ search", "p price", "tab category"}
	if !m.browse.state.Criteria().IsZero() {
		keys = append(keys, "x clear")
	}
	keys = append(keys, "r refresh", "enter details")
	if _, ok := m.deps.Session.Current(); ok {
		keys = append(keys, "l logout")
	} else {
		keys = append(keys, "l login", "s sign up")
	}
	if m.deps.Session.IsAdmin() {
		keys = append(keys, "n new", "e edit", "d delete")
	}
	return strings.Join(append(keys, "q quit"), " • ")
}

// errorText renders an error for the status line.
func errorText(err error) string {
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		return "Wrong email or password"
	case errors.Is(err, session.ErrNotAuthenticated):
		return "Please log in first"
	case errors.Is(err, session.ErrNotAdmin):
		return "Only admins can do that"
	}
	var verr *productform.ValidationError
	if errors.As(err, &verr) {
		return "Please fix the highlighted fields"
	}
	switch api.KindOf(err) {
	case api.KindNetwork:
		return "Cannot reach the store, check your connection"
	case api.KindServer:
		return "The store is having trouble, try again later"
	case api.KindUnauthorized:
		return "Your session was rejected, log in again"
	case api.KindNotFound:
		return "Product not found"
	}
	return err.Error()
}
