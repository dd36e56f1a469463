// Package extract pulls values out of fetched page bodies.
//
// JSON bodies are queried with gjson paths such as "data.items.0.name".
// HTML bodies are queried with CSS selectors, returning the text of each
// match.
package extract
