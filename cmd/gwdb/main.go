package main

import (
	"os"

	"github.com/zeptools/gw-dbconn/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
