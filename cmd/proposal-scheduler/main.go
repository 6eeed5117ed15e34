package main

import (
	"github.com/LENAX/proposal-scheduler/pkg/cli/cmd"
)

func main() {
	cmd.Execute()
}
