package main

import "github.com/Pratham266/cassure-go/internal/cli"

func main() {
	cli.Execute()
}
