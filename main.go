// Command vault is a personal content capture and retrieval backend.
package main

import (
	"fmt"
	"os"

	"github.com/arnaldo-delisio/vault-mcp/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
