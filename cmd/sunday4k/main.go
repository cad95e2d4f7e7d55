// Command sunday4k runs the Sunday4K email service: the HTTP API, the job
// workers, schema migrations, seeding and offline template rendering.
package main

import (
	"context"
	"os"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
