// Package main provides the entry point for the dupespotter CLI.
//
// dupespotter fetches two pages, strips the parts that change on every
// request (echoed URLs, tokens, timestamps, share widgets) and prints a
// unified diff of what is left. An empty diff means the pages are
// duplicates.
//
// Usage:
//
//	dupespotter <url>          fetch through the cache and print the body
//	dupespotter <url1> <url2>  compare two pages
//	dupespotter corpus [dir]   check stored duplicate pairs
//
// See --help for all available options.
package main

func main() {
	Execute()
}
