package main

import (
	"github.com/quantrel/go-quantrel/pkg/cmd"
)

func main() {
	cmd.Execute()
}
