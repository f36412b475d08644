package main

import (
	"github.com/castup/castup/internal/cli"
	"github.com/castup/castup/internal/metrics"
)

func main() {
	metrics.EmitBuildInfo()
	cli.Execute()
}
