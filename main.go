package main

import "github.com/beka-birhanu/vinom-zkmaze/cli"

func main() {
	cli.Execute()
}
