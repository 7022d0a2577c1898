// Command memy tracks and recalls frequently and recently used files and
// directories.
package main

import (
	"context"
	"os"

	"github.com/andrewferrier/memy/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
