package main

import "github.com/farmkit/stratreg/cmd"

func main() {
	cmd.Execute()
}
