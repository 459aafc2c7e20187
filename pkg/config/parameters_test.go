package config

import (
	"reflect"
	"strings"
	"testing"
)

func TestFromParameters(t *testing.T) {
	cfg, err := FromParameters(map[string]string{
		"login.1":                   "alice:secret",
		"login.2":                   "bob",
		"login.3":                   "carol:pa:ss",
		"repository.docs":           "/srv/docs",
		"repository.docs.readwrite": "alice, bob",
		"repository.docs.readonly":  "carol,,",
		"repository.archive":        " /srv/archive ",
		"unrelated.key":             "ignored",
	})
	if err != nil {
		t.Fatalf("FromParameters failed: %v", err)
	}

	wantLogins := []LoginConfig{
		{Username: "alice", Password: "secret"},
		{Username: "bob", Password: ""},
		{Username: "carol", Password: "pa:ss"},
	}
	if !reflect.DeepEqual(cfg.Logins, wantLogins) {
		t.Errorf("Expected logins %+v, got %+v", wantLogins, cfg.Logins)
	}

	if len(cfg.Repositories) != 2 {
		t.Fatalf("Expected 2 repositories, got %d", len(cfg.Repositories))
	}

	archive, docs := cfg.Repositories[0], cfg.Repositories[1]
	if archive.ID != "archive" || archive.Root != "/srv/archive" {
		t.Errorf("Unexpected archive repository: %+v", archive)
	}
	if docs.ID != "docs" || docs.Root != "/srv/docs" {
		t.Errorf("Unexpected docs repository: %+v", docs)
	}
	if !reflect.DeepEqual(docs.ReadWrite, []string{"alice", "bob"}) {
		t.Errorf("Unexpected read-write users: %v", docs.ReadWrite)
	}
	if !reflect.DeepEqual(docs.ReadOnly, []string{"carol"}) {
		t.Errorf("Unexpected read-only users: %v", docs.ReadOnly)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected defaults to be applied, got level %q", cfg.Logging.Level)
	}
}

func TestFromParameters_DottedRepositoryID(t *testing.T) {
	cfg, err := FromParameters(map[string]string{
		"repository.team.docs":          "/srv/docs",
		"repository.team.docs.readonly": "bob",
	})
	if err != nil {
		t.Fatalf("FromParameters failed: %v", err)
	}
	if len(cfg.Repositories) != 1 || cfg.Repositories[0].ID != "team.docs" {
		t.Fatalf("Unexpected repositories: %+v", cfg.Repositories)
	}
	if !reflect.DeepEqual(cfg.Repositories[0].ReadOnly, []string{"bob"}) {
		t.Errorf("Unexpected read-only users: %v", cfg.Repositories[0].ReadOnly)
	}
}

func TestFromParameters_Errors(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   string
	}{
		{"empty id", map[string]string{"repository.": "/srv"}, "no repository id"},
		{"blank id", map[string]string{"repository. .readwrite": "alice"}, "no repository id"},
		{"users for unknown repository", map[string]string{"repository.docs.readwrite": "alice"}, "unknown repository"},
		{"empty root", map[string]string{"repository.docs": ""}, "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromParameters(tt.params)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got: %v", tt.want, err)
			}
		})
	}
}
