package main

import (
	"context"
	"os"

	"github.com/reportsmith/reportsmith/pkg/cli"
)

func main() {
	ctx := context.Background()

	code, err := cli.Run(ctx, os.Args[1:])
	if err != nil {
		os.Exit(code)
	}
}
