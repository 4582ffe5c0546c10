package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

func TestBrowserViewerServesFigure(t *testing.T) {
	png := []byte("\x89PNG fake figure")
	var served []byte
	var status404 int

	v := &browserViewer{
		logger: log.New(io.Discard),
		open: func(url string) error {
			resp, err := http.Get(url)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
				t.Errorf("Content-Type = %q, want image/png", ct)
			}
			served, err = io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			other := url[:strings.LastIndex(url, "/")+1] + "00000000-0000-0000-0000-000000000000"
			resp2, err := http.Get(other)
			if err != nil {
				return err
			}
			resp2.Body.Close()
			status404 = resp2.StatusCode
			return nil
		},
		wait: func(ctx context.Context, title, url string) error {
			if title != "JHM kraj (2021)" || !strings.Contains(url, "/figures/") {
				t.Errorf("wait(%q, %q)", title, url)
			}
			return nil
		},
	}

	if err := v.Show(context.Background(), "JHM kraj (2021)", png); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if !bytes.Equal(served, png) {
		t.Errorf("served %q, want %q", served, png)
	}
	if status404 != http.StatusNotFound {
		t.Errorf("unknown figure id returned %d, want 404", status404)
	}
}

func TestBrowserViewerOpenFailureStillWaits(t *testing.T) {
	waited := false
	v := &browserViewer{
		logger: log.New(io.Discard),
		open:   func(string) error { return io.ErrUnexpectedEOF },
		wait: func(context.Context, string, string) error {
			waited = true
			return nil
		},
	}
	if err := v.Show(context.Background(), "t", []byte("x")); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if !waited {
		t.Error("viewer did not wait after a failed browser launch")
	}
}

func TestBrowserViewerPropagatesAbort(t *testing.T) {
	v := &browserViewer{
		logger: log.New(io.Discard),
		open:   func(string) error { return nil },
		wait:   func(context.Context, string, string) error { return context.Canceled },
	}
	if err := v.Show(context.Background(), "t", []byte("x")); err != context.Canceled {
		t.Errorf("Show error = %v, want context.Canceled", err)
	}
}

func TestPromptModelKeys(t *testing.T) {
	tests := []struct {
		key         tea.KeyMsg
		quits       bool
		interrupted bool
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, true, false},
		{tea.KeyMsg{Type: tea.KeyEnter}, true, false},
		{tea.KeyMsg{Type: tea.KeyEsc}, true, false},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, true, true},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			m, cmd := newPromptModel("title", "http://127.0.0.1/figures/x").Update(tt.key)
			if (cmd != nil) != tt.quits {
				t.Errorf("quit = %v, want %v", cmd != nil, tt.quits)
			}
			if got := m.(promptModel).interrupted; got != tt.interrupted {
				t.Errorf("interrupted = %v, want %v", got, tt.interrupted)
			}
		})
	}
}

func TestPromptModelView(t *testing.T) {
	view := newPromptModel("Nehody", "http://127.0.0.1:1234/figures/abc").View()
	for _, want := range []string{"Nehody", "http://127.0.0.1:1234/figures/abc", "continue"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}
