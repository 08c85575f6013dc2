package main

import "github.com/kozaktomas/bioguard/cmd"

func main() {
	cmd.Execute()
}
