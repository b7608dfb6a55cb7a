package main

import "portsmith/internal/cli"

func main() {
	cli.Execute()
}
