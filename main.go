package main

import "github.com/papapumpkin/openspec/cmd"

func main() {
	cmd.Execute()
}
