package main

import "github.com/krobus00/futures-gateway/cmd"

func main() {
	cmd.Execute()
}
