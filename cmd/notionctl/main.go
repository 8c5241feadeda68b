// Command notionctl administers a notion-clone store: schema migration,
// bulk import, export and search reindexing.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Version information, injected at build time.
var Version = "dev"

func main() {
	_ = godotenv.Load()

	root := NewRootCmd(openApp)
	root.Version = Version
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
