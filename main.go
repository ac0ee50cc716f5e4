package main

import "github.com/khanhnv2901/festguard/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
