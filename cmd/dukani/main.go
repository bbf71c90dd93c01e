// dukani is a small terminal client for the Dukani storefront backend,
// mostly useful for poking at a deployment: log in, inspect the session,
// and manage favorites from a shell.
package main

import "github.com/dukani/dukani-go/cmd/dukani/cmd"

func main() {
	cmd.Execute()
}
