package main

import (
	"log"
	"os"

	dataverse "github.com/viant/mcp-dataverse"
)

func main() {
	if err := dataverse.Run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
