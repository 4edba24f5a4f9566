// Wallet is a command line tool for managing keys and sending transactions
// to a node.
package main

import "github.com/ardanlabs/powchain/app/wallet/cmd"

func main() {
	cmd.Execute()
}
