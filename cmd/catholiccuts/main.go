package main

import "github.com/sundaymedia/catholiccuts/internal/cli"

func main() {
	cli.Main()
}
