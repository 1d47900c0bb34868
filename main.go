package main

import "github.com/heizence/securevault/cmd"

func main() {
	cmd.Execute()
}
