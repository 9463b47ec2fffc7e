package main

import "github.com/oshokin/bedtime/cmd/bedtime/cmd"

func main() {
	cmd.Execute()
}
