package main

import (
	"github.com/joho/godotenv"

	"faqrag/internal/cli"
)

func main() {
	_ = godotenv.Load()

	cli.Execute()
}
