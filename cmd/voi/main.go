// cmd/voi/main.go
package main

import (
	cmd "github.com/mwiater/voi/internal/cli"
)

// executeCmd is replaced in tests.
var executeCmd = cmd.Execute

// main starts the voi CLI application by delegating to the cobra root
// command defined in the voi package.
func main() {
	executeCmd()
}
