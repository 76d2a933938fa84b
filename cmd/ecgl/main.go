package main

import "github.com/OpenTraceLab/ecglearn/cmd/ecgl/cmd"

func main() {
	cmd.Execute()
}
