// Package main is the entry point for the sbfeatures CLI tool, which derives
// shot and possession features from StatsBomb event data.
package main

import "github.com/pable/go-sb-features/cmd"

func main() {
	cmd.Execute()
}
