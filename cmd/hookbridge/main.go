package main

import "github.com/xraph/hookbridge/internal/cli"

func main() {
	cli.Execute()
}
