package main

import (
	"log"

	"github.com/spec-kit/gas-utility-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
