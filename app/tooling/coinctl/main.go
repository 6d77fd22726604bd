package main

import "github.com/coinlab/coinlab/app/tooling/coinctl/cmd"

func main() {
	cmd.Execute()
}
