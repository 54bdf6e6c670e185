package main

import (
	"os"

	"github.com/cyberahree/rockin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
