package main

import "github.com/leavesync/leavesync/cmd"

func main() {
	cmd.Execute()
}
