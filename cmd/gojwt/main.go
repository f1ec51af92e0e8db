// Command gojwt encodes, decodes and generates JSON Web Tokens from the command line.
//
//	gojwt encode --header '{"alg":"HS256"}' --payload '{"sub":"a"}' --secret "$SECRET" --expiry 10m --iat
//	gojwt decode --token "$TOKEN" --secret "$SECRET"
//	gojwt generate --alg ES256
//	gojwt keyset put main --file jwks.json --redis-addr localhost:6379
//
// Results are printed as JSON on stdout. Logs go to stderr.
package main

import (
	"fmt"
	"os"
)

func main() {
	a := &app{out: os.Stdout, in: os.Stdin}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
