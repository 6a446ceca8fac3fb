// Package main provides the entry point for the wikisurf CLI.
//
// wikisurf is a terminal reader for Wikipedia. It opens the main page, a
// title or a wiki link, and remembers where you were between runs.
//
// Usage:
//
//	wikisurf [title-or-url]
//	wikisurf --search "query"
//	wikisurf history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
