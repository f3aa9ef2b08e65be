package main

import (
	"os"

	"github.com/ayoisaiah/focusguard/app"
	"github.com/ayoisaiah/focusguard/internal/osutil"
	"github.com/ayoisaiah/focusguard/report"
)

func run(args []string) error {
	return app.Get().Run(args)
}

func main() {
	err := run(os.Args)
	if err != nil {
		report.Error(err)
		os.Exit(int(osutil.ExitError))
	}
}
