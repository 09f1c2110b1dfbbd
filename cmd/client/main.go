package main

import (
	"github.com/fleetgrid/battleship-go/internal/cli"
)

func main() {
	cli.Execute()
}
