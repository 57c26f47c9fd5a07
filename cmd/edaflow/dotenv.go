// ABOUTME: Loads environment variables from a .env file before flags are parsed.
// ABOUTME: Variables already present in the environment are never overwritten.
package main

import (
	"bufio"
	"os"
	"strings"
)

// loadDotEnv sets variables from the .env file at path and returns how many
// were set. A missing or unreadable file sets nothing. Blank lines and #
// comments are skipped; an optional "export " prefix and matching quotes
// around the value are removed.
func loadDotEnv(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	set := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := parseDotEnvLine(scanner.Text())
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if os.Setenv(key, value) == nil {
			set++
		}
	}
	return set
}

// parseDotEnvLine splits one KEY=VALUE line. Values may contain '='.
func parseDotEnvLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	key, value, ok = strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	value = strings.TrimSpace(value)
	if n := len(value); n >= 2 && (value[0] == '"' || value[0] == '\'') && value[n-1] == value[0] {
		value = value[1 : n-1]
	}
	return key, value, true
}
