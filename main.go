package main

import (
	"github.com/dszqbsm/musiccrawler/cmd"
)

func main() {
	cmd.Execute()
}
