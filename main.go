package main

import "github.com/frahmantamala/shopping-list/cmd"

func main() {
	cmd.Execute()
}
