// Command dashboard is the command-line front end of the employee
// assessment dashboard.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/garnizeh/assessboard/internal/repository"
)

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		if errors.Is(err, repository.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "not authorized")
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
