package main

import "cosmos-isolation/cmd"

func main() {
	cmd.Execute()
}
