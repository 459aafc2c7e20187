package config

import (
	"fmt"
	"sort"
	"strings"
)

// Flat key-value configuration keys.
const (
	prefixLogin      = "login."
	prefixRepository = "repository."
	suffixReadWrite  = ".readwrite"
	suffixReadOnly   = ".readonly"
)

// FromParameters builds a Config from the flat key-value form:
//
//	login.<n>                  = user:password
//	repository.<id>            = /path/to/root
//	repository.<id>.readwrite  = alice,bob
//	repository.<id>.readonly   = carol
//
// Keys are processed in sorted order, so a repository root always precedes
// its user lists. Unrelated keys are ignored. Defaults are applied and the
// result is validated.
func FromParameters(params map[string]string) (*Config, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cfg := &Config{}
	repos := make(map[string]int)

	for _, key := range keys {
		value := params[key]

		switch {
		case strings.HasPrefix(key, prefixLogin):
			username, password, _ := strings.Cut(value, ":")
			if strings.TrimSpace(username) == "" {
				continue
			}
			cfg.Logins = append(cfg.Logins, LoginConfig{Username: strings.TrimSpace(username), Password: password})

		case strings.HasPrefix(key, prefixRepository):
			rest := strings.TrimPrefix(key, prefixRepository)
			suffix := ""
			for _, s := range []string{suffixReadWrite, suffixReadOnly} {
				if strings.HasSuffix(rest, s) {
					suffix = s
					rest = strings.TrimSuffix(rest, s)
					break
				}
			}

			id := strings.TrimSpace(rest)
			if id == "" {
				return nil, fmt.Errorf("%s: no repository id", key)
			}

			if suffix == "" {
				if _, exists := repos[id]; exists {
					return nil, fmt.Errorf("%s: duplicate repository id %q", key, id)
				}
				repos[id] = len(cfg.Repositories)
				cfg.Repositories = append(cfg.Repositories, RepositoryConfig{ID: id, Root: strings.TrimSpace(value)})
				continue
			}

			idx, ok := repos[id]
			if !ok {
				return nil, fmt.Errorf("%s: unknown repository %q", key, id)
			}
			repo := &cfg.Repositories[idx]
			if suffix == suffixReadWrite {
				repo.ReadWrite = append(repo.ReadWrite, splitUsers(value)...)
			} else {
				repo.ReadOnly = append(repo.ReadOnly, splitUsers(value)...)
			}
		}
	}

	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// splitUsers splits a comma separated user list, dropping blank entries.
func splitUsers(csl string) []string {
	var users []string
	for _, s := range strings.Split(csl, ",") {
		if s = strings.TrimSpace(s); s != "" {
			users = append(users, s)
		}
	}
	return users
}
