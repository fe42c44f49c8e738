package main

import "ems/cmd/ems/cmd"

func main() {
	cmd.Execute()
}
