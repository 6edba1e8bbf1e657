package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// An interrupted run has already cleaned up through the signal
		// context; report it with the conventional interrupt status.
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "aria:", err)
		os.Exit(1)
	}
}
