package main

import (
	"context"
	"os"

	"github.com/fatih/color"

	"github.com/imAETHER/ReactVerify/app"
)

func main() {
	if err := app.Run(context.Background(), os.Args); err != nil {
		color.Red("[!] %v", err)
		os.Exit(1)
	}
}
