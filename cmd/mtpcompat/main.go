package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/effortless-metrics/mtpcompat/cmd/mtpcompat/commands"
)

func main() {
	err := commands.Execute()
	switch {
	case err == nil:
	case errors.Is(err, commands.ErrInvestigationRequired):
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}
