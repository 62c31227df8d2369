package main

import "github.com/harborops/attendance-management/cmd"

func main() {
	cmd.Execute()
}
