package main

import "github.com/Krysto-nc-dev/robot-nc-api-V2/cmd"

func main() {
	cmd.Execute()
}
