//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
//
// These imports are not used at runtime, they keep mockgen (run through
// go generate) pinned in go.mod.
package range_server

import (
	_ "go.uber.org/mock/mockgen"
)
