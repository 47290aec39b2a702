package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sunieldevarapu/deployment-scheduler/internal/cli"
)

func Run(ctx context.Context, args []string) int {
	root := cli.NewRootCmd(Version)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		// Only unusable flags or configuration land here. A reconciliation
		// run that deferred its work still exits 0 so the invoking scheduler
		// does not alert on transient upstream failures.
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}
