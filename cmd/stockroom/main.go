package main

import "github.com/mytheresa/stockroom/cmd/stockroom/commands"

func main() {
	commands.Execute()
}
