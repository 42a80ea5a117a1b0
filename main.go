package main

import "anydl/cmd"

func main() {
	cmd.Execute()
}
