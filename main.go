package main

import "github.com/xvierd/pomodoro-pro/cmd"

func main() {
	cmd.Execute()
}
