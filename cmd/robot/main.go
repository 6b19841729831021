package main

import "itdashboard-robot/cmd/robot/cmd"

func main() {
	cmd.Execute()
}
