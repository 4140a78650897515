package main

import (
	"fmt"
	"log"
	"os"

	"bookcatalog/internal/auth"
)

// Prints the bcrypt hash of the given password, for ADMIN_PASSWORD_HASH.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(2)
	}

	hash, err := auth.HashPassword(os.Args[1])
	if err != nil {
		log.Fatalf("hashing password: %v", err)
	}
	fmt.Println(hash)
}
