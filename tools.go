//go:build tools
// +build tools

// Package main pins API-doc tooling to go.mod.
// See https://go.dev/wiki/Modules#how-can-i-track-tool-dependencies-for-a-module
package main

import (
	_ "github.com/swaggo/swag"
)
