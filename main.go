// The main package for the sitescribe executable.
package main

import (
	"github.com/sitescribe/sitescribe/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
