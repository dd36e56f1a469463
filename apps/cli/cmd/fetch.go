package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/abdul-hamid-achik/pagefetch/packages/archive"
	"github.com/abdul-hamid-achik/pagefetch/packages/extract"
	"github.com/abdul-hamid-achik/pagefetch/packages/fetch"
	"github.com/abdul-hamid-achik/pagefetch/packages/output"
	"github.com/spf13/cobra"
)

type extraction struct {
	jsonPath string
	selector string
}

func (e extraction) enabled() bool {
	return e.jsonPath != "" || e.selector != ""
}

func fetchCommand(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	return runFetch(cmd.Context(), s, args[0], extraction{
		jsonPath: jsonPathFlag,
		selector: selectorFlag,
	})
}

func runFetch(ctx context.Context, s *settings, rawURL string, ex extraction) error {
	f := newFetcher(s)

	s.log.DebugContext(ctx, "fetching", "origin", rawURL)

	var (
		page *fetch.Page
		err  error
	)
	if s.cfg.Output == "log" && !ex.enabled() {
		page, err = streamToLog(ctx, f, s, rawURL)
	} else {
		page, err = f.Fetch(ctx, rawURL)
	}

	if page == nil {
		if s.cfg.Output == "json" {
			output.NewJSONFormatter(output.JSONWithWriter(s.out)).FormatPage(nil, err)
		}
		return withExitCode(fetchExitCode(err), err)
	}

	s.log.DebugContext(ctx, "fetched", "origin", page.OriginURL, "final", page.FinalURL, "redirects", page.Redirects())

	if archiveErr := archivePage(ctx, s, page); archiveErr != nil {
		return archiveErr
	}

	switch {
	case ex.jsonPath != "":
		value, ok := extract.JSONPath(page.Body, ex.jsonPath)
		if !ok {
			return withExitCode(ExitFetchError, fmt.Errorf("no value at JSON path %q in %s", ex.jsonPath, page.FinalURL))
		}
		fmt.Fprintln(s.out, value)
	case ex.selector != "":
		values, selErr := extract.Selector(page.Body, ex.selector)
		if selErr != nil {
			return withExitCode(ExitUsageError, selErr)
		}
		for _, v := range values {
			fmt.Fprintln(s.out, v)
		}
	case s.cfg.Output == "json":
		output.NewJSONFormatter(output.JSONWithWriter(s.out)).FormatPage(page, err)
	case s.cfg.Output == "raw":
		fmt.Fprint(s.out, page.Body)
		if !strings.HasSuffix(page.Body, "\n") {
			fmt.Fprintln(s.out)
		}
	}

	if s.cfg.GetVerbose() && s.cfg.Output != "json" {
		output.NewConsoleFormatter(
			output.WithWriter(s.errOut),
			output.WithVerbose(true),
			output.WithNoColor(s.cfg.GetNoColor()),
		).FormatPage(page, err)
	}

	// A read error leaves a partial page; it was logged by the fetcher and
	// does not fail the command.
	return nil
}

// streamToLog writes each body line to the log as it is read. The lines are
// joined into the returned page for archiving.
func streamToLog(ctx context.Context, f *fetch.Fetcher, s *settings, rawURL string) (*fetch.Page, error) {
	stream, err := f.Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var (
		lines   []string
		readErr error
		outcome = fetch.Complete
	)
	for {
		line, err := stream.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if line != "" {
				s.log.InfoContext(ctx, line)
				lines = append(lines, line)
			}
			s.log.WarnContext(ctx, "could not read page", "url", rawURL, "error", err)
			readErr = &fetch.ReadError{URL: rawURL, Err: err}
			outcome = fetch.Partial
			break
		}
		s.log.InfoContext(ctx, line)
		lines = append(lines, line)
	}

	return &fetch.Page{
		Session: stream.Session,
		Body:    fetch.JoinLines(lines, s.cfg.GetLineBreaks()),
		Outcome: outcome,
	}, readErr
}

func archivePage(ctx context.Context, s *settings, page *fetch.Page) error {
	if s.cfg.Archive == "" {
		return nil
	}

	store, err := archive.Open(s.cfg.Archive)
	if err != nil {
		return withExitCode(ExitArchiveError, err)
	}
	defer store.Close()

	rec := archive.RecordFromPage(page)
	if err := store.Save(ctx, rec); err != nil {
		return withExitCode(ExitArchiveError, err)
	}
	s.log.DebugContext(ctx, "archived page", "id", rec.ID, "archive", s.cfg.Archive)
	return nil
}
