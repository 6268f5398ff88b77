package main

import (
	"fmt"
	"os"

	"github.com/otcheredev/pcd-manager/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pcdctl:", err)
		os.Exit(1)
	}
}
