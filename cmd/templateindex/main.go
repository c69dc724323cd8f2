// Command templateindex builds the semantic template index: it discovers
// template metadata, embeds each template's description and writes the
// vectors and metadata to their stores.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
