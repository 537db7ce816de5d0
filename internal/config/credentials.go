package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrMissingAPIKey indicates no OpenAI credential could be resolved at
// startup. Use errors.Is to check for it.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// ResolveAPIKey returns the OpenAI API key from the environment, falling
// back to a hidden interactive prompt when stdin is a terminal. Resolution
// happens once at bootstrap; a missing key fails startup rather than the
// first query.
func ResolveAPIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		return key, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrMissingAPIKey
	}
	fmt.Fprintln(os.Stderr, "OpenAI API key required (input is hidden).")
	fmt.Fprint(os.Stderr, "OPENAI_API_KEY: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read api key: %w", err)
	}
	key := strings.TrimSpace(string(raw))
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}
