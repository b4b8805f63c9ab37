// Package main is a development utility for generating the random secrets the
// backend needs before first boot: a session signing secret and an SMS
// credential passphrase. It prints ready-to-paste environment variable
// exports so developers can bring up a local instance without inventing weak
// secrets by hand. Do not reuse generated values across environments.
package main

import (
	"encoding/base64"
	"fmt"
	"log"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/crypto"
)

func main() {
	sessionSecret, err := crypto.GenerateKey()
	if err != nil {
		log.Fatal(err)
	}
	credentialSecret, err := crypto.GenerateKey()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("==========================================================")
	fmt.Println("Secrets Generated")
	fmt.Println("==========================================================")
	fmt.Printf("\nexport OSCA_SESSION_SECRET=%s\n", base64.RawURLEncoding.EncodeToString(sessionSecret))
	fmt.Printf("export OSCA_SMS_CREDENTIAL_SECRET=%s\n", base64.RawURLEncoding.EncodeToString(credentialSecret))
	fmt.Println("\n==========================================================")
	fmt.Println("Add these to your shell profile or .env before starting the")
	fmt.Println("server. Rotating OSCA_SMS_CREDENTIAL_SECRET requires")
	fmt.Println("re-saving the SMS gateway credentials afterwards.")
	fmt.Println("==========================================================")
}
