package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"musicdl/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
