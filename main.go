package main

import "github.com/pgdelta/pgdelta/cmd"

func main() {
	cmd.Execute()
}
