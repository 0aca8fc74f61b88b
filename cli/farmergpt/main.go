package main

import (
	"os"

	farmergptcmder "github.com/farmergpt/farmergpt/cmd/farmergpt"
)

func main() {
	cmd := farmergptcmder.NewFarmerGPTCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
