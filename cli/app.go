// ABOUTME: Shared command wiring for the gcalsync CLI
// ABOUTME: Builds the logger, output styles, and the lazily created Google connector
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/harperreed/gcalsync/config"
	"github.com/harperreed/gcalsync/sync"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	stepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
)

// App carries configuration and collaborators shared by all commands.
type App struct {
	Config *config.Config
	Logger *log.Logger
	Out    io.Writer
	Clock  sync.Clock

	// Connector and Auth are built from Config on first use when nil.
	Connector sync.Connector
	Auth      *sync.Authenticator

	// OpenBrowser opens the consent page during login.
	OpenBrowser func(url string) error

	color bool
}

// NewApp creates an App writing user-facing output to out.
func NewApp(cfg *config.Config, logger *log.Logger, out io.Writer) *App {
	color := false
	if f, ok := out.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}

	return &App{
		Config:      cfg,
		Logger:      logger,
		Out:         out,
		Clock:       sync.RealClock{},
		OpenBrowser: openBrowser,
		color:       color,
	}
}

// NewLogger creates the structured logger used by every component.
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          config.AppName,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)

	return logger, nil
}

func (a *App) authenticator() (*sync.Authenticator, error) {
	if a.Auth != nil {
		return a.Auth, nil
	}

	oauthConfig, err := sync.NewOAuthConfig(a.Config)
	if err != nil {
		return nil, err
	}

	store, err := sync.NewTokenStore(a.Config)
	if err != nil {
		return nil, err
	}

	a.Auth = sync.NewAuthenticator(oauthConfig, store, a.Logger)
	return a.Auth, nil
}

func (a *App) connector() (sync.Connector, error) {
	if a.Connector != nil {
		return a.Connector, nil
	}

	auth, err := a.authenticator()
	if err != nil {
		return nil, err
	}

	a.Connector = &sync.GoogleConnector{
		Auth:         auth,
		ContactsFile: a.Config.ContactsFile,
	}
	return a.Connector, nil
}

func (a *App) contactSource(ctx context.Context) (sync.ContactSource, error) {
	if a.Config.ContactsFile != "" {
		return sync.NewVCardSource(a.Config.ContactsFile), nil
	}

	connector, err := a.connector()
	if err != nil {
		return nil, err
	}
	return sync.OpenContactSource(ctx, connector, "")
}

func (a *App) render(style lipgloss.Style, text string) string {
	if !a.color {
		return text
	}
	return style.Render(text)
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.Out, format, args...)
}

func (a *App) ok(format string, args ...any) {
	a.printf("%s %s\n", a.render(okStyle, "✓"), fmt.Sprintf(format, args...))
}

func (a *App) step(format string, args ...any) {
	a.printf("  %s %s\n", a.render(stepStyle, "→"), fmt.Sprintf(format, args...))
}

func (a *App) warn(format string, args ...any) {
	a.printf("%s %s\n", a.render(warnStyle, "!"), fmt.Sprintf(format, args...))
}

// openBrowser attempts to open URL in default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	command := exec.Command(cmd, args...)
	return command.Start()
}
