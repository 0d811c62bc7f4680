// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves inference credentials. Keys come from a command
// line flag, from a directory of plain-text files, or from the environment
// (optionally seeded from a .env file), in that order.
//
// In the secrets directory each file is one secret: the filename is the key
// name and the trimmed contents are the value. Supported key files:
// anthropic-api-key, openai-api-key, gemini-api-key.
package secrets

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pdiddy/trivia-cards/pkg/types"
)

// ErrMissingCredential is returned when no source provides a key.
var ErrMissingCredential = errors.New("missing API credential")

// Source names where a credential was found.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceFile    Source = "secrets file"
	SourceEnv     Source = "environment"
	SourceMissing Source = ""
)

// envVars maps each provider to the environment variable holding its key.
var envVars = map[types.Provider]string{
	types.ProviderAnthropic: "ANTHROPIC_API_KEY",
	types.ProviderOpenAI:    "OPENAI_API_KEY",
	types.ProviderGemini:    "GEMINI_API_KEY",
}

// EnvVar returns the environment variable for provider, or "" if unknown.
func EnvVar(p types.Provider) string { return envVars[p] }

// KeyFile returns the secrets-directory file name for provider.
func KeyFile(p types.Provider) string { return string(p) + "-api-key" }

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	var present []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			present = append(present, p)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("loading %s: %w", strings.Join(present, ", "), err)
	}
	return nil
}

// Resolve picks the credential for provider: flag wins, then the loaded
// secrets files, then the provider's environment variable.
func Resolve(p types.Provider, flag string, loaded map[string]string) (string, Source, error) {
	if v := strings.TrimSpace(flag); v != "" {
		return v, SourceFlag, nil
	}
	if v, ok := loaded[KeyFile(p)]; ok && v != "" {
		return v, SourceFile, nil
	}
	env := EnvVar(p)
	if env == "" {
		return "", SourceMissing, fmt.Errorf("provider %q: %w", p, ErrMissingCredential)
	}
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v, SourceEnv, nil
	}
	return "", SourceMissing, fmt.Errorf("%w for %s: pass --api-key, create .secrets/%s, or set %s",
		ErrMissingCredential, p, KeyFile(p), env)
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("secrets.unreadable", "file", name, "err", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
