package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/matchkeeper/internal/secretctl"
)

func main() {
	if err := secretctl.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
