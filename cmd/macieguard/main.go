package main

import "github.com/sentinelops/macieguard/internal/cli"

func main() {
	cli.Execute()
}
