package main

import "github.com/custard-lang/custard-sub000/pkg/cli"

func main() {
	cli.Run()
}
