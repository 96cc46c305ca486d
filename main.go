package main

import "github.com/shriya-methkupally/metro-2025-clusters/cmd"

func main() {
	cmd.Execute()
}
