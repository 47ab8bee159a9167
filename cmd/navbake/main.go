package main

import "github.com/arl/volnav/cmd/navbake/cmd"

func main() {
	cmd.Execute()
}
