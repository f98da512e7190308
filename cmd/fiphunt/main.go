package main

import (
	"os"

	"github.com/ademaro/fiphunt/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
