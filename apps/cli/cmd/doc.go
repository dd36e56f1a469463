// Package cmd implements the pagefetch CLI commands using Cobra.
//
// Available commands:
//   - pagefetch <url>: Fetch a page and stream its body to the log
//   - bench: Fetch a page repeatedly and report latency percentiles
//   - history: List pages saved with --archive
//   - init: Write a starter .pagefetch.yaml
//   - completion: Generate shell completion scripts
//   - version: Show pagefetch version information
//
// Settings come from a .pagefetch.yaml or .pagefetch.json file, then
// PAGEFETCH_* environment variables, then flags.
package cmd
