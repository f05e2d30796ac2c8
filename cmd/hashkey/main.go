// Command hashkey prints the bcrypt hash of an operator key, for use as
// OPERATOR_KEY_HASH. The key is read from the first argument or from stdin.
package main

import (
	"bufio"
	"fmt"
	"os"

	authusecase "minishop/catalog/internal/usecase/auth"
)

func main() {
	key, err := readKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashkey: %v\n", err)
		os.Exit(1)
	}
	hash, err := authusecase.HashKey(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashkey: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

func readKey() (string, error) {
	if len(os.Args) > 1 {
		return os.Args[1], nil
	}
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("usage: hashkey <key> (or pipe the key on stdin)")
}
