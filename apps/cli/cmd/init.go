package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/pagefetch/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Write pagefetch starter files in the current directory.

This creates:
  - .pagefetch.yaml  - Configuration file with the default settings
  - .env.example     - The PAGEFETCH_* variables that override it

Examples:
  pagefetch init
  pagefetch init --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

const envExample = `# Copy to .env and load with --env-file .env
# PAGEFETCH_MAX_REDIRECTS=20
# PAGEFETCH_TIMEOUT=30000
# PAGEFETCH_USER_AGENT=pagefetch/1.0
# PAGEFETCH_HEADERS=Accept-Language:en
# PAGEFETCH_OUTPUT=log
# PAGEFETCH_LINE_BREAKS=false
# PAGEFETCH_ARCHIVE=sqlite://pagefetch.db
# PAGEFETCH_LOG_LEVEL=info
`

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	return writeInitFiles(cwd, forceInit, cmd.OutOrStdout())
}

func writeInitFiles(dir string, force bool, out io.Writer) error {
	configFile := filepath.Join(dir, ".pagefetch.yaml")
	envFile := filepath.Join(dir, ".env.example")

	if !force {
		for _, f := range []string{configFile, envFile} {
			if _, err := os.Stat(f); err == nil {
				return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	if err := config.DefaultConfig().SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(out, "Created: %s\n", configFile)

	if err := os.WriteFile(envFile, []byte(envExample), 0644); err != nil {
		return fmt.Errorf("failed to create env example: %w", err)
	}
	fmt.Fprintf(out, "Created: %s\n", envFile)

	fmt.Fprintf(out, "\nRun 'pagefetch <url>' to fetch a page with these settings.\n")
	return nil
}
