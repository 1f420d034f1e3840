package main

import "github.com/predmarkets/arbwatch/cmd"

func main() {
	cmd.Execute()
}
