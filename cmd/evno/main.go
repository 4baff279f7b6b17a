package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/evno/internal/app"
)

func main() {
	if err := app.Run(os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "evno: %v\n", err)
		os.Exit(1)
	}
}
