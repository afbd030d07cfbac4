package main

import "github.com/jsphweid/noterelay/cmd"

func main() {
	cmd.Execute()
}
