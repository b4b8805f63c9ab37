// Package main is a utility for generating bcrypt hashes of passwords. The
// backend stores only bcrypt hashes of user passwords, so this tool is used
// when manually seeding the first administrator account into the users table
// without going through the developer-key registration flow. Running it
// locally produces a hash that can be inserted directly into the password
// column.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/auth"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: hash <password>")
		os.Exit(1)
	}

	hash, err := auth.HashPassword(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	fmt.Println(hash)
}
