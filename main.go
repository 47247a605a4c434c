package main

import (
	"github.com/mergington/signupboard/cmd"
)

func main() {
	cmd.Execute()
}
