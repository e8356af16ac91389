package main

import (
	"context"
	"errors"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
