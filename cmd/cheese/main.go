// Command cheese runs the photobooth kiosk, a headless booth server, and the tools around them.
package main

import (
	"fmt"
	"os"
)

func main() {
	app := newCLIApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
