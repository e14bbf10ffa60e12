package main

import (
	"os"

	"github.com/Fepozopo/pixfx/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], cli.Env{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		EnvFile: ".env",
	}))
}
