package main

import "github.com/mj1618/wintheme/cmd"

func main() {
	cmd.Execute()
}
