// Command hashpw prints a bcrypt hash suitable for BASIC_AUTH_PASS.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/auth"
)

func main() {
	var pw string
	if len(os.Args) > 1 {
		pw = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintf(os.Stderr, "read password: %v\n", err)
			os.Exit(1)
		}
		pw = strings.TrimRight(line, "\r\n")
	}
	if pw == "" {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>  (or pipe it on stdin)")
		os.Exit(2)
	}
	hash, err := auth.BcryptHasher{}.Hash(pw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
