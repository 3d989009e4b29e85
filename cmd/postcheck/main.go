package main

import "github.com/zfogg/postcheck/internal/cmd"

func main() {
	cmd.Execute()
}
