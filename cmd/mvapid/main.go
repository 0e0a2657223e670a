/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/mediavault/vault/cmd/mvapid/cmd"

func main() {
	cmd.Execute()
}
