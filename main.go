package main

import "github.com/KaramelBytes/msrp-cli/cmd"

func main() {
	cmd.Execute()
}
