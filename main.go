package main

import "github.com/threatsketch/threatsketch/cmd"

func main() {
	cmd.Execute()
}
