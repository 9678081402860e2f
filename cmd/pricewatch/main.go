package main

import "github.com/pricewatch/pricewatch/internal/cli"

func main() {
	cli.Execute()
}
