package main

import (
	"os"

	"github.com/taskpilot/taskpilot/chatservice"
)

func main() {
	if err := chatservice.Run(); err != nil {
		os.Exit(1)
	}
}
