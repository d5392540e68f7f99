package main

import "github.com/Mohsinsiddi/springbridge/cmd"

func main() {
	cmd.Execute()
}
