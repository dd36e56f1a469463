package cmd

// Exit codes for pagefetch CLI
const (
	// ExitSuccess indicates the page was fetched
	ExitSuccess = 0

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitFetchError indicates the page could not be fetched
	ExitFetchError = 4

	// ExitArchiveError indicates the archive could not be opened or written
	ExitArchiveError = 5

	// ExitUsageError indicates invalid CLI usage, including a URL that is
	// not http or https
	ExitUsageError = 64
)
