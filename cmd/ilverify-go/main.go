package main

import (
	"os"

	"github.com/ariel-frischer/ilverify/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
