package main

import "github.com/ponyo877/flychat/cli/cmd"

func main() {
	cmd.Execute()
}
