package main

import (
	"github.com/brayvid/news-site/cmd/cmd"
	"github.com/brayvid/news-site/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	cmd.Execute()
}
