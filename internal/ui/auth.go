package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matthieukhl/storefront/internal/models"
)

type loginView struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	pending  bool
}

func newLoginView() loginView {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 128
	email.Width = 32

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 32

	return loginView{email: email, password: password}
}

func (l *loginView) focusField(i int) {
	l.focus = (i + 2) % 2
	l.email.Blur()
	l.password.Blur()
	if l.focus == 0 {
		l.email.Focus()
	} else {
		l.password.Focus()
	}
}

func (l *loginView) reset() {
	l.email.SetValue("")
	l.password.SetValue("")
	l.pending = false
	l.focusField(0)
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := &m.login
	switch msg.String() {
	case "esc":
		m.screen = screenBrowse
		return m, nil
	case "tab", "down":
		l.focusField(l.focus + 1)
		return m, nil
	case "shift+tab", "up":
		l.focusField(l.focus - 1)
		return m, nil
	case "enter":
		if l.focus == 0 {
			l.focusField(1)
			return m, nil
		}
		if l.pending {
			return m, nil
		}
		l.pending = true
		ctx, sess := m.ctx, m.deps.Session
		email, password := l.email.Value(), l.password.Value()
		return m, func() tea.Msg {
			user, err := sess.Login(ctx, email, password)
			return loginMsg{user: user, err: err}
		}
	}

	var cmd tea.Cmd
	if l.focus == 0 {
		l.email, cmd = l.email.Update(msg)
	} else {
		l.password, cmd = l.password.Update(msg)
	}
	return m, cmd
}

func (m Model) viewLogin() string {
	l := m.login
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Log in") + "\n")
	sb.WriteString(m.fieldLabel("Email", l.focus == 0) + l.email.View() + "\n")
	sb.WriteString(m.fieldLabel("Password", l.focus == 1) + l.password.View() + "\n\n")

	if l.pending {
		sb.WriteString(m.spinner.View() + " Logging in...\n")
	} else if err := m.deps.Session.AuthError(); err != nil {
		sb.WriteString(m.styles.Error.Render(errorText(err)) + "\n")
	}
	return sb.String()
}

func (m Model) fieldLabel(label string, focused bool) string {
	if focused {
		return m.styles.Focused.Render("> " + label)
	}
	return m.styles.Label.Render("  " + label)
}

type registerView struct {
	inputs  []textinput.Model
	focus   int
	pending bool
	message string
	failed  bool
}

const (
	regUsername = iota
	regEmail
	regPassword
	regRole
)

var registerLabels = []string{"Username", "Email", "Password", "Role"}

func newRegisterView() registerView {
	inputs := make([]textinput.Model, len(registerLabels))
	for i := range inputs {
		in := textinput.New()
		in.CharLimit = 128
		in.Width = 32
		inputs[i] = in
	}
	inputs[regEmail].Placeholder = "you@example.com"
	inputs[regPassword].EchoMode = textinput.EchoPassword
	inputs[regPassword].EchoCharacter = '•'
	inputs[regRole].Placeholder = models.RoleUser + " or " + models.RoleAdmin
	return registerView{inputs: inputs}
}

func (r *registerView) focusField(i int) {
	n := len(r.inputs)
	r.focus = ((i % n) + n) % n
	for j := range r.inputs {
		if j == r.focus {
			r.inputs[j].Focus()
		} else {
			r.inputs[j].Blur()
		}
	}
}

func (r *registerView) request() models.RegisterRequest {
	return models.RegisterRequest{
		Username: r.inputs[regUsername].Value(),
		Email:    r.inputs[regEmail].Value(),
		Password: r.inputs[regPassword].Value(),
		Role:     strings.ToLower(strings.TrimSpace(r.inputs[regRole].Value())),
	}
}

func (m Model) updateRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := &m.register
	switch msg.String() {
	case "esc":
		m.screen = screenBrowse
		return m, nil
	case "tab", "down":
		r.focusField(r.focus + 1)
		return m, nil
	case "shift+tab", "up":
		r.focusField(r.focus - 1)
		return m, nil
	case "enter":
		if r.focus < len(r.inputs)-1 {
			r.focusField(r.focus + 1)
			return m, nil
		}
		if r.pending {
			return m, nil
		}
		r.pending = true
		r.message = ""
		ctx, sess, req := m.ctx, m.deps.Session, r.request()
		return m, func() tea.Msg {
			resp, err := sess.Register(ctx, req)
			return registerMsg{email: req.Email, resp: resp, err: err}
		}
	}

	var cmd tea.Cmd
	r.inputs[r.focus], cmd = r.inputs[r.focus].Update(msg)
	return m, cmd
}

func (m Model) handleRegistered(msg registerMsg) (tea.Model, tea.Cmd) {
	r := &m.register
	r.pending = false
	if msg.err != nil {
		r.failed = true
		r.message = msg.err.Error()
		if msg.resp == nil {
			r.message = errorText(msg.err)
		}
		return m, nil
	}

	r.failed = false
	r.message = ""
	for i := range r.inputs {
		r.inputs[i].SetValue("")
	}
	m.setStatus(statusSuccess, "Registered %s, you can log in now", msg.email)
	m.screen = screenLogin
	m.login.reset()
	m.login.email.SetValue(strings.TrimSpace(msg.email))
	m.login.focusField(1)
	return m, nil
}

func (m Model) viewRegister() string {
	r := m.register
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Sign up") + "\n")
	for i, in := range r.inputs {
		sb.WriteString(m.fieldLabel(registerLabels[i], r.focus == i) + in.View() + "\n")
	}
	sb.WriteString("\n")
	switch {
	case r.pending:
		sb.WriteString(m.spinner.View() + " Registering...\n")
	case r.message != "" && r.failed:
		sb.WriteString(m.styles.Error.Render(r.message) + "\n")
	case r.message != "":
		sb.WriteString(m.styles.Success.Render(r.message) + "\n")
	}
	return sb.String()
}
