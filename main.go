package main

import "github.com/fundval/contractdiff/cmd"

func main() {
	cmd.Execute()
}
