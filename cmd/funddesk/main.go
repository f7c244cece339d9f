package main

import (
	"log"
	"os"

	"FundDesk/internal/cli"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := cli.New().Execute(); err != nil {
		log.Printf("[FATAL] %v", err)
		os.Exit(1)
	}
}
