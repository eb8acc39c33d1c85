package main

import "github.com/zhubert/reword/cmd"

func main() {
	cmd.Execute()
}
