package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// browserViewer shows a figure by serving it on a loopback address and
// opening the system browser. Show blocks until the user dismisses the
// prompt, so figures appear one after another.
type browserViewer struct {
	logger *log.Logger
	open   func(url string) error
	wait   func(ctx context.Context, title, url string) error
}

func newBrowserViewer(logger *log.Logger) *browserViewer {
	return &browserViewer{logger: logger, open: openBrowser, wait: waitForDismiss}
}

// Show implements report.Viewer.
func (v *browserViewer) Show(ctx context.Context, title string, png []byte) error {
	id := uuid.New()

	r := chi.NewRouter()
	r.Get("/figures/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") != id.String() {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.Write(png)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	url := fmt.Sprintf("http://%s/figures/%s", ln.Addr(), id)
	v.logger.Debug("serving figure", "title", title, "url", url)
	if err := v.open(url); err != nil {
		printWarning("Could not open a browser: %v", err)
	}
	return v.wait(ctx, title, url)
}

// openBrowser starts the platform URL handler without waiting for it.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// waitForDismiss blocks in a prompt until the user presses q, enter or esc.
// ctrl+c aborts the whole run.
func waitForDismiss(ctx context.Context, title, url string) error {
	p := tea.NewProgram(newPromptModel(title, url), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	m, err := p.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	if m.(promptModel).interrupted {
		return context.Canceled
	}
	return nil
}

// =============================================================================
// promptModel - "press q to continue"
// =============================================================================

type promptModel struct {
	title       string
	url         string
	interrupted bool
}

func newPromptModel(title, url string) promptModel {
	return promptModel{title: title, url: url}
}

func (m promptModel) Init() tea.Cmd {
	return nil
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c":
			m.interrupted = true
			return m, tea.Quit
		case "q", "enter", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m promptModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(StyleLink.Render(m.url))
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render("q/⏎ continue  ctrl+c abort"))
	b.WriteString("\n")
	return b.String()
}
