// Package main is the bridge-server entry point (HTTP + WebSocket).
package main

import (
	"log"

	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
