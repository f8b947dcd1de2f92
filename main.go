package main

import "github.com/rezmoss/focuscli/cmd"

func main() {
	cmd.Execute()
}
