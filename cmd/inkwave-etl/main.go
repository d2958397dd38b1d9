// Package main is the entry point for inkwave-etl.
package main

import (
	"fmt"
	"os"

	"github.com/inkwave-data/inkwave-warehouse/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
