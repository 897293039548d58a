package main

import (
	_ "github.com/joho/godotenv/autoload"

	"mini-twitter/cmd"
)

func main() {
	cmd.Run()
}
