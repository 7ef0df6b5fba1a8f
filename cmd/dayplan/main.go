package main

import "github.com/theakshaypant/dayplan/cmd/dayplan/cmd"

func main() {
	cmd.Execute()
}
