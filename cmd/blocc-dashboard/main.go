package main

import "blocc-dashboard/internal/cli"

func main() {
	cli.Execute()
}
