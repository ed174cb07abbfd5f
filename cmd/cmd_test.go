package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/arin/gptchat/internal/ai"
	"github.com/arin/gptchat/internal/chat"
	"github.com/arin/gptchat/internal/credential"
	"github.com/arin/gptchat/internal/stats"
)

// replyClient answers every request with the same single fragment.
type replyClient struct{ text string }

func (c replyClient) CompleteStream(ctx context.Context, req ai.Request) <-chan ai.StreamDelta {
	ch := make(chan ai.StreamDelta, 2)
	ch <- ai.StreamDelta{Token: c.text}
	ch <- ai.StreamDelta{Done: true}
	close(ch)
	return ch
}

func newTestRepl(t *testing.T) (*replState, *bytes.Buffer) {
	t.Helper()
	factory := ai.FactoryFunc(func(string, credential.Credential) (ai.Client, error) {
		return replyClient{text: "pong"}, nil
	})
	sess := chat.NewSession("test", chat.NewAggregator(credential.Static("sk-test"), factory))
	var out bytes.Buffer
	return &replState{session: sess, settings: chat.DefaultSettings(), out: &out}, &out
}

func TestReplHandle_ExitWords(t *testing.T) {
	r, _ := newTestRepl(t)
	for _, in := range []string{"exit", "quit", "bye", "EXIT"} {
		handled, quit := r.handle(in)
		if !handled || !quit {
			t.Errorf("%q: expected quit, got handled=%v quit=%v", in, handled, quit)
		}
	}
}

func TestReplHandle_PlainTextIsAPrompt(t *testing.T) {
	r, out := newTestRepl(t)
	handled, quit := r.handle("what is go?")
	if handled || quit {
		t.Errorf("plain text should pass through, got handled=%v quit=%v", handled, quit)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestReplHandle_Settings(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    chat.Settings
		wantOut string
	}{
		{
			name:    "switch model",
			input:   "/model gpt-4o",
			want:    chat.Settings{Model: "gpt-4o", MaxTokens: 100, Temperature: 0.7},
			wantOut: "gpt-4o",
		},
		{
			name:    "unknown model keeps settings",
			input:   "/model gpt-2",
			want:    chat.DefaultSettings(),
			wantOut: `unknown model "gpt-2"`,
		},
		{
			name:    "tokens",
			input:   "/tokens 500",
			want:    chat.Settings{Model: chat.DefaultModel, MaxTokens: 500, Temperature: 0.7},
			wantOut: "500",
		},
		{
			name:    "tokens off step",
			input:   "/tokens 55",
			want:    chat.DefaultSettings(),
			wantOut: "multiple of 10",
		},
		{
			name:    "tokens not a number",
			input:   "/tokens lots",
			want:    chat.DefaultSettings(),
			wantOut: "not a number",
		},
		{
			name:    "temperature",
			input:   "/temp 1.3",
			want:    chat.Settings{Model: chat.DefaultModel, MaxTokens: 100, Temperature: 1.3},
			wantOut: "1.3",
		},
		{
			name:    "temperature out of range",
			input:   "/temp 2.5",
			want:    chat.DefaultSettings(),
			wantOut: "between 0.1 and 2.0",
		},
		{
			name:    "temperature NaN",
			input:   "/temp NaN",
			want:    chat.DefaultSettings(),
			wantOut: "between 0.1 and 2.0",
		},
		{
			name:    "missing argument",
			input:   "/temp",
			want:    chat.DefaultSettings(),
			wantOut: "Usage: /temp <t>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, out := newTestRepl(t)
			handled, quit := r.handle(tt.input)
			if !handled || quit {
				t.Fatalf("expected handled command, got handled=%v quit=%v", handled, quit)
			}
			if r.settings != tt.want {
				t.Errorf("settings = %+v, want %+v", r.settings, tt.want)
			}
			if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output %q does not contain %q", out.String(), tt.wantOut)
			}
		})
	}
}

func TestReplHandle_Clear(t *testing.T) {
	r, out := newTestRepl(t)
	for range r.session.Generate(context.Background(), "ping", r.settings) {
	}
	r.session.SetPrompt("draft")
	if len(r.session.History()) != 2 {
		t.Fatalf("expected a reply before clearing, got %v", r.session.History())
	}

	r.handle("/clear")

	if len(r.session.History()) != 0 || r.session.Status() != "" || r.session.Prompt() != "" {
		t.Error("expected session to be reset")
	}
	if !strings.Contains(out.String(), "Conversation cleared.") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestReplHandle_StatsAndHelp(t *testing.T) {
	r, out := newTestRepl(t)
	for range r.session.Generate(context.Background(), "ping", r.settings) {
	}

	r.handle("/stats")
	if !strings.Contains(out.String(), "1 total") {
		t.Errorf("expected stats for one reply, got %q", out.String())
	}

	out.Reset()
	r.handle("/help")
	for _, c := range []string{"/clear", "/model", "/tokens", "/temp", "/settings", "/stats"} {
		if !strings.Contains(out.String(), c) {
			t.Errorf("help is missing %s", c)
		}
	}
}

func TestReplHandle_Unknown(t *testing.T) {
	r, out := newTestRepl(t)
	handled, _ := r.handle("/nope")
	if !handled {
		t.Fatal("slash input should always be consumed")
	}
	if !strings.Contains(out.String(), "Unknown command /nope") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestPrintStats_Empty(t *testing.T) {
	var out bytes.Buffer
	printStats(&out, stats.NewTracker().Summarize())
	if !strings.Contains(out.String(), "No replies yet.") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestApplyFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().StringVar(&flagModel, "model", "", "")
	cmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "")
	cmd.Flags().Float64Var(&flagTemperature, "temperature", 0, "")

	if err := cmd.Flags().Parse([]string{"--max-tokens", "300"}); err != nil {
		t.Fatal(err)
	}
	got := applyFlags(cmd, chat.Settings{Model: "gpt-4o", MaxTokens: 100, Temperature: 1.0})

	want := chat.Settings{Model: "gpt-4o", MaxTokens: 300, Temperature: 1.0}
	if got != want {
		t.Errorf("applyFlags = %+v, want %+v", got, want)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	if err := loadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("GPTCHAT_TEST_KEY=from-file\nGPTCHAT_TEST_SET=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GPTCHAT_TEST_SET", "from-env")
	t.Setenv("GPTCHAT_TEST_KEY", "")
	os.Unsetenv("GPTCHAT_TEST_KEY")

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("GPTCHAT_TEST_KEY"); got != "from-file" {
		t.Errorf("expected value from .env, got %q", got)
	}
	if got := os.Getenv("GPTCHAT_TEST_SET"); got != "from-env" {
		t.Errorf("existing variables must win, got %q", got)
	}
}

func TestPingOpenAI(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr string
	}{
		{"ok", http.StatusOK, ""},
		{"bad key", http.StatusUnauthorized, "rejected"},
		{"server error", http.StatusInternalServerError, "could not reach"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth, gotPath string
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				gotPath = r.URL.Path
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				if tt.status == http.StatusOK {
					w.Write([]byte(`{"object":"list","data":[]}`))
				} else {
					w.Write([]byte(`{"error":{"message":"nope"}}`))
				}
			}))
			defer ts.Close()

			factory := ai.OpenAIFactory{BaseURL: ts.URL + "/v1/"}
			detail, err := pingOpenAI(context.Background(), factory, "gpt-4o", credential.Credential("sk-abc"))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !strings.Contains(detail, "gpt-4o") {
					t.Errorf("detail %q should name the model", detail)
				}
			} else if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
			if gotAuth != "Bearer sk-abc" || gotPath != "/v1/models" {
				t.Errorf("unexpected request: auth=%q path=%q", gotAuth, gotPath)
			}
		})
	}
}

func TestPingOpenAI_BuildFailure(t *testing.T) {
	_, err := pingOpenAI(context.Background(), ai.OpenAIFactory{}, "gpt-4o", credential.Credential(""))
	var initErr *ai.ClientInitError
	if !errors.As(err, &initErr) {
		t.Fatalf("expected *ClientInitError, got %v", err)
	}
}
