package main

import (
	"os"

	memoflowcmder "github.com/memoflow/memoflow/cmd/memoflow"
)

func main() {
	cmd := memoflowcmder.NewMemoflowCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
