package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/pagefetch/packages/archive"
	"github.com/abdul-hamid-achik/pagefetch/packages/core/config"
	"github.com/abdul-hamid-achik/pagefetch/packages/fetch"
	"github.com/abdul-hamid-achik/pagefetch/packages/logging"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSettings struct {
	*settings
	logs *bytes.Buffer
	out  *bytes.Buffer
}

func newTestSettings(mutate func(*config.Config)) testSettings {
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}

	var logs, out, errOut bytes.Buffer
	return testSettings{
		settings: &settings{
			cfg:    cfg,
			log:    logging.New(logging.WithOutput(&logs)),
			out:    &out,
			errOut: &errOut,
		},
		logs: &logs,
		out:  &out,
	}
}

func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/start":
			w.Header().Add("Set-Cookie", "sid=42")
			http.Redirect(w, r, "/page", http.StatusFound)
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = fmt.Fprint(w, "<html>\n<h1>Title</h1>\n<p>cookie:"+r.Header.Get("Cookie")+"</p>\n</html>\n")
		case "/api":
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `{"user": {"name": "ada"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunFetch_LogOutput(t *testing.T) {
	server := newPageServer(t)
	ts := newTestSettings(nil)

	err := runFetch(context.Background(), ts.settings, server.URL+"/start", extraction{})

	require.NoError(t, err)
	logs := ts.logs.String()
	assert.Contains(t, logs, "level=INFO msg=<h1>Title</h1>")
	assert.Contains(t, logs, "<p>cookie:sid=42</p>")
	assert.Empty(t, ts.out.String())
}

func TestRunFetch_RawOutput(t *testing.T) {
	server := newPageServer(t)
	ts := newTestSettings(func(c *config.Config) { c.Output = "raw" })

	err := runFetch(context.Background(), ts.settings, server.URL+"/start", extraction{})

	require.NoError(t, err)
	assert.Equal(t, "<html> <h1>Title</h1> <p>cookie:sid=42</p> </html>\n", ts.out.String())
}

func TestRunFetch_JSONOutput(t *testing.T) {
	server := newPageServer(t)
	ts := newTestSettings(func(c *config.Config) { c.Output = "json" })

	err := runFetch(context.Background(), ts.settings, server.URL+"/start", extraction{})

	require.NoError(t, err)
	assert.Contains(t, ts.out.String(), `"finalUrl": "`+server.URL+`/page"`)
	assert.Contains(t, ts.out.String(), `"redirects": 1`)
}

func TestRunFetch_Extraction(t *testing.T) {
	server := newPageServer(t)

	t.Run("json path", func(t *testing.T) {
		ts := newTestSettings(nil)
		require.NoError(t, runFetch(context.Background(), ts.settings, server.URL+"/api", extraction{jsonPath: "user.name"}))
		assert.Equal(t, "ada\n", ts.out.String())
	})

	t.Run("missing json path", func(t *testing.T) {
		ts := newTestSettings(nil)
		err := runFetch(context.Background(), ts.settings, server.URL+"/api", extraction{jsonPath: "user.email"})
		assert.Equal(t, ExitFetchError, exitCode(err))
	})

	t.Run("selector", func(t *testing.T) {
		ts := newTestSettings(nil)
		require.NoError(t, runFetch(context.Background(), ts.settings, server.URL+"/start", extraction{selector: "h1"}))
		assert.Equal(t, "Title\n", ts.out.String())
	})
}

func TestRunFetch_Errors(t *testing.T) {
	server := newPageServer(t)

	t.Run("invalid url", func(t *testing.T) {
		ts := newTestSettings(nil)
		err := runFetch(context.Background(), ts.settings, "ftp://example.com", extraction{})
		assert.ErrorIs(t, err, fetch.ErrInvalidArgument)
		assert.Equal(t, ExitUsageError, exitCode(err))
	})

	t.Run("not found", func(t *testing.T) {
		ts := newTestSettings(nil)
		err := runFetch(context.Background(), ts.settings, server.URL+"/missing", extraction{})
		assert.ErrorIs(t, err, fetch.ErrIO)
		assert.Equal(t, ExitFetchError, exitCode(err))
	})

	t.Run("json reports the error", func(t *testing.T) {
		ts := newTestSettings(func(c *config.Config) { c.Output = "json" })
		err := runFetch(context.Background(), ts.settings, server.URL+"/missing", extraction{})
		assert.Error(t, err)
		assert.Contains(t, ts.out.String(), `"error":`)
	})
}

func TestRunFetch_Archive(t *testing.T) {
	server := newPageServer(t)
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "history.db")
	ts := newTestSettings(func(c *config.Config) { c.Archive = dsn })

	require.NoError(t, runFetch(context.Background(), ts.settings, server.URL+"/start", extraction{}))

	store, err := archive.Open(dsn)
	require.NoError(t, err)
	defer store.Close()

	records, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, server.URL+"/page", records[0].FinalURL)
	assert.Equal(t, "<html> <h1>Title</h1> <p>cookie:sid=42</p> </html>", records[0].Body)
}

func TestRunFetch_BadArchive(t *testing.T) {
	server := newPageServer(t)
	ts := newTestSettings(func(c *config.Config) { c.Archive = "redis://localhost" })

	err := runFetch(context.Background(), ts.settings, server.URL+"/start", extraction{})
	assert.Equal(t, ExitArchiveError, exitCode(err))
}

func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	registerCommonFlags(c)
	registerFetchFlags(c)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func TestResolveConfig_FlagsWin(t *testing.T) {
	t.Setenv("PAGEFETCH_MAX_REDIRECTS", "7")
	t.Setenv("PAGEFETCH_USER_AGENT", "env-agent")

	c := newFlagCommand(t, "--max-redirects", "3", "-o", "RAW", "--timeout", "2s", "--line-breaks")
	cfg, err := resolveConfig(c.Flags())

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxRedirects)
	assert.Equal(t, "env-agent", cfg.UserAgent)
	assert.Equal(t, "raw", cfg.Output)
	assert.Equal(t, 2000, cfg.Timeout)
	assert.True(t, cfg.GetLineBreaks())
}

func TestResolveConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"bad output", []string{"-o", "xml"}, ExitUsageError},
		{"bad timeout", []string{"--timeout", "soon"}, ExitUsageError},
		{"zero redirects", []string{"--max-redirects", "0"}, ExitUsageError},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, ExitConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFlagCommand(t, tt.args...)
			_, err := resolveConfig(c.Flags())
			require.Error(t, err)
			assert.Equal(t, tt.code, exitCode(err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitUsageError, exitCode(errors.New("accepts 1 arg(s), received 0")))
	assert.Equal(t, ExitConfigError, exitCode(withExitCode(ExitConfigError, errors.New("bad"))))
	assert.Nil(t, withExitCode(ExitFetchError, nil))

	wrapped := fmt.Errorf("outer: %w", withExitCode(ExitFetchError, fetch.ErrIO))
	assert.Equal(t, ExitFetchError, exitCode(wrapped))
	assert.ErrorIs(t, wrapped, fetch.ErrIO)
}

func TestFetchExitCode(t *testing.T) {
	assert.Equal(t, ExitUsageError, fetchExitCode(&fetch.URLError{URL: "x"}))
	assert.Equal(t, ExitFetchError, fetchExitCode(&fetch.StatusError{StatusCode: 500}))
	assert.Equal(t, ExitFetchError, fetchExitCode(fetch.ErrTooManyRedirects))
}

func TestWriteInitFiles(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, writeInitFiles(dir, false, &out))
	assert.Contains(t, out.String(), ".pagefetch.yaml")

	cfg, err := config.LoadConfig(filepath.Join(dir, ".pagefetch.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.MaxRedirects)
	assert.Equal(t, "log", cfg.Output)

	err = writeInitFiles(dir, false, &out)
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))

	assert.NoError(t, writeInitFiles(dir, true, &out))
}
