package main

import "jade/cmd/jade-cli/cmd"

func main() {
	cmd.Execute()
}
