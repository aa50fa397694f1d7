// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads the Notion credential and target page from local
// files: a directory of plain-text secret files, and a dotenv file.
//
// In the directory form each file is one secret; the filename is the key
// and the trimmed contents are the value. Supported keys: notion-token,
// notion-page-id.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Keys understood by the CLI, in directory form and in dotenv form.
const (
	TokenFile  = "notion-token"
	PageIDFile = "notion-page-id"

	TokenEnv  = "NOTION_TOKEN"
	PageIDEnv = "NOTION_PAGE_ID"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
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
			logrus.WithError(err).WithField("secret", name).Warn("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnvFile parses a dotenv file without touching the process
// environment. A missing file yields an empty map.
func LoadEnvFile(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	for k, v := range vars {
		vars[k] = strings.TrimSpace(v)
	}
	return vars, nil
}

// Credentials is the token and page id resolved from local files.
type Credentials struct {
	Token  string
	PageID string
}

// Resolve merges the directory secrets and the dotenv values. Directory
// secrets win over dotenv values.
func Resolve(dir map[string]string, env map[string]string) Credentials {
	pick := func(fileKey, envKey string) string {
		if v := dir[fileKey]; v != "" {
			return v
		}
		return env[envKey]
	}
	return Credentials{
		Token:  pick(TokenFile, TokenEnv),
		PageID: pick(PageIDFile, PageIDEnv),
	}
}
