package main

import (
	"github.com/pvecontrol/pvecontrol/internal/cli"
)

func main() {
	cli.Execute()
}
