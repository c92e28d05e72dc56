//go:build tools
// +build tools

package main

// Build and CI tooling kept as blank imports so `go mod tidy` retains them.

import (
	_ "github.com/fzipp/gocyclo"
	_ "github.com/jstemmer/go-junit-report"
	_ "github.com/wadey/gocovmerge"
	_ "golang.org/x/lint/golint"
	_ "golang.org/x/tools/cmd/goimports"
)
