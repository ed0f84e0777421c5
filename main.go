package main

import "github.com/brandonshearin/distvec/cmd"

func main() {
	cmd.Execute()
}
