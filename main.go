package main

import "github.com/notargets/boxmesh/cmd"

func main() {
	cmd.Execute()
}
