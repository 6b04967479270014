package main

import (
	"os"

	"dotup/cmd/dotup/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
