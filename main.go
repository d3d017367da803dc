package main

import "github.com/theopenlane/phishguard/cmd"

func main() {
	cmd.Execute()
}
