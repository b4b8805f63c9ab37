// Package main is a smoke-test utility that verifies the backend's HTTP API
// is reachable and returning valid responses. It hits the health endpoint and
// the public settings endpoint and prints the status code and response body
// for each, making it useful for quick post-deployment checks without needing
// external tooling like curl or a full integration test suite.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
)

func main() {
	base := os.Getenv("OSCA_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	failed := false
	for _, path := range []string{"/health", "/api/settings"} {
		resp, err := http.Get(base + path)
		if err != nil {
			fmt.Printf("GET %s error: %v\n", path, err)
			failed = true
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			fmt.Printf("GET %s error reading body: %v\n", path, err)
			failed = true
			continue
		}

		fmt.Printf("GET %s -> %d\n%s\n\n", path, resp.StatusCode, string(body))
		if resp.StatusCode >= http.StatusInternalServerError {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}
