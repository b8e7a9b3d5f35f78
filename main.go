package main

import "github.com/SvenDH/go-card-client/cmd"

func main() {
	cmd.Execute()
}
