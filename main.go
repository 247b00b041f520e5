package main

import (
	"os"

	"github.com/rl-gate/rl-gate/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
