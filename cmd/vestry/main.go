package main

import "github.com/diogo/vestry/internal/commands"

func main() {
	commands.Execute()
}
