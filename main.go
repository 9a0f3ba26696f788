package main

import (
	"os"

	"authflow_automation/presentation/terminal"
)

func main() {
	os.Exit(terminal.Execute())
}
