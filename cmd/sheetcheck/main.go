package main

import (
	"os"

	"github.com/JonMunkholm/excelreader/cmd/sheetcheck/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
