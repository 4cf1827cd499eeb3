package main

import "github.com/kamusis/movierec/cmd"

func main() {
	cmd.Execute()
}
