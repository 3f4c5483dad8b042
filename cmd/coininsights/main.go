package main

import "coin-insights/internal/cli"

func main() {
	cli.Execute()
}
