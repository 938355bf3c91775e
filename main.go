package main

import "github.com/KaramelBytes/datasweeper/cmd"

func main() {
	cmd.Execute()
}
