package main

import "github.com/mcoot/roomhub/internal/cli"

func main() {
	cli.Execute()
}
