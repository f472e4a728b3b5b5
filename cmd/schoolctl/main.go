package main

import (
	"os"

	"github.com/theswapneil/school-management-system/internal/cli"
)

func main() {
	os.Exit(cli.New().Execute())
}
