package main

import "github.com/benchfetch/benchfetch/cmd"

func main() {
	cmd.Execute()
}
