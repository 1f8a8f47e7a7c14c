package main

import "github.com/scienceol/keep-awake/cmd"

func main() {
	cmd.Execute()
}
