package main

import "github.com/hola-ivan/event-image-generator/cmd"

func main() {
	cmd.Execute()
}
