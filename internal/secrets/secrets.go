// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves API credentials from a directory of plain-text
// files with environment variables as the fallback. Each file holds one
// secret: the filename is the key and the trimmed contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultDir is the secrets directory read at startup.
const DefaultDir = ".secrets/"

// Key files understood by pubmed-assistant.
const (
	OpenAIAPIKey = "openai-api-key"
	NCBIAPIKey   = "ncbi-api-key"
	NCBIEmail    = "ncbi-email"
)

// envFallback maps each key file to the environment variable consulted when
// the file is absent.
var envFallback = map[string]string{
	OpenAIAPIKey: "OPENAI_API_KEY",
	NCBIAPIKey:   "NCBI_API_KEY",
	NCBIEmail:    "NCBI_EMAIL",
}

// Store is a loaded set of secrets.
type Store map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory is
// not an error and yields an empty Store. Unreadable files are reported on
// stderr and skipped; empty files are ignored.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Store)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Resolve returns the first non-empty value among explicit, the secret file
// for key, and the key's environment variable.
func (s Store) Resolve(key, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := s[key]; v != "" {
		return v
	}
	if env, ok := envFallback[key]; ok {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}

// Keys returns the loaded key names in sorted order.
func (s Store) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
