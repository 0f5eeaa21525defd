package main

import (
	"os"

	"github.com/gopak/dcs-cli/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
