package config

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marmos91/filebridge/pkg/cmis"
)

func invoiceTypes() []TypeDefinitionConfig {
	return []TypeDefinitionConfig{
		{
			ID:     "invoice",
			Parent: cmis.TypeDocument,
			Properties: []PropertyDefinitionConfig{
				{ID: "inv:number", Type: "string", Updatability: "readwrite", Required: true},
				{ID: "inv:tags", Type: "string", Updatability: "oncreate", Multi: true},
			},
		},
		{ID: "creditnote", Parent: "invoice"},
	}
}

func TestCreateCatalog_Memory(t *testing.T) {
	cfg := &TypesConfig{Store: "memory", Definitions: invoiceTypes()}

	catalog, err := CreateCatalog(context.Background(), cfg)
	if err != nil {
		t.Fatalf("CreateCatalog failed: %v", err)
	}
	defer catalog.Close()

	invoice := catalog.Get("invoice")
	if invoice == nil {
		t.Fatal("Expected invoice type to be registered")
	}
	if invoice.BaseKind != cmis.BaseDocument {
		t.Errorf("Expected document base kind, got %v", invoice.BaseKind)
	}
	if invoice.DisplayName != "invoice" {
		t.Errorf("Expected display name to default to the id, got %q", invoice.DisplayName)
	}

	number := invoice.PropertyDefinitions["inv:number"]
	if number == nil || !number.Required || number.Updatability != cmis.ReadWrite || number.QueryName != "inv:number" {
		t.Errorf("Unexpected inv:number definition: %+v", number)
	}
	tags := invoice.PropertyDefinitions["inv:tags"]
	if tags == nil || tags.Cardinality != cmis.Multi || tags.Updatability != cmis.OnCreate {
		t.Errorf("Unexpected inv:tags definition: %+v", tags)
	}
	if _, ok := invoice.PropertyDefinitions[cmis.PropName]; !ok {
		t.Error("Expected inherited cmis:name definition")
	}

	credit := catalog.Get("creditnote")
	if credit == nil || credit.PropertyDefinitions["inv:number"] == nil {
		t.Error("Expected creditnote to inherit inv:number")
	}
}

func TestCreateCatalog_BadgerPersistsTypes(t *testing.T) {
	ctx := context.Background()
	cfg := &TypesConfig{
		Store:       "badger",
		Badger:      map[string]any{"db_path": filepath.Join(t.TempDir(), "types")},
		Definitions: invoiceTypes(),
	}

	catalog, err := CreateCatalog(ctx, cfg)
	if err != nil {
		t.Fatalf("CreateCatalog failed: %v", err)
	}
	if err := catalog.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Reopening replays the stored types; configured ones are not registered twice
	catalog, err = CreateCatalog(ctx, cfg)
	if err != nil {
		t.Fatalf("Reopening failed: %v", err)
	}
	defer catalog.Close()

	if catalog.Get("creditnote") == nil {
		t.Error("Expected creditnote after reopening")
	}
	if n := len(catalog.List()); n != 4 {
		t.Errorf("Expected 4 types, got %d", n)
	}
}

func TestCreateCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *TypesConfig
		want string
	}{
		{"unknown store", &TypesConfig{Store: "postgres"}, "unknown type store"},
		{"badger without path", &TypesConfig{Store: "badger", Badger: map[string]any{}}, "db_path is required"},
		{"badger bad option", &TypesConfig{Store: "badger", Badger: map[string]any{"in_memory": "sometimes"}}, "invalid badger config"},
		{"bad property type", &TypesConfig{Store: "memory", Definitions: []TypeDefinitionConfig{
			{ID: "x", Parent: cmis.TypeDocument, Properties: []PropertyDefinitionConfig{{ID: "p", Type: "blob"}}},
		}}, "unknown property type"},
		{"unknown parent", &TypesConfig{Store: "memory", Definitions: []TypeDefinitionConfig{
			{ID: "x", Parent: "nope"},
		}}, "failed to register type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateCatalog(context.Background(), tt.cfg)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestBuildRuntime(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{
		Logins: []LoginConfig{{Username: "alice", Password: "secret"}, {Username: "bob"}},
		Repositories: []RepositoryConfig{
			{ID: "docs", Root: root, ReadWrite: []string{"alice"}, ReadOnly: []string{"bob"}},
		},
		Types: TypesConfig{Definitions: invoiceTypes()},
	}
	ApplyDefaults(cfg)

	rt, err := BuildRuntime(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("BuildRuntime failed: %v", err)
	}
	defer rt.Close()

	if err := rt.Users.AuthenticateUser("alice", "secret"); err != nil {
		t.Errorf("Expected alice to authenticate: %v", err)
	}
	if err := rt.Users.AuthenticateUser("bob", ""); err != nil {
		t.Errorf("Expected bob to authenticate with an empty password: %v", err)
	}

	repo, err := rt.Registry.Get("docs")
	if err != nil {
		t.Fatalf("Expected docs repository: %v", err)
	}
	if repo.Root() != root {
		t.Errorf("Expected root %q, got %q", root, repo.Root())
	}
	if repo.Catalog() != rt.Catalog {
		t.Error("Expected repositories to share the runtime catalog")
	}

	entries, err := rt.Registry.Users("docs")
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 user entries, got %d", len(entries))
	}
}

func TestBuildRuntime_MissingRoot(t *testing.T) {
	cfg := &Config{
		Repositories: []RepositoryConfig{{ID: "docs", Root: filepath.Join(t.TempDir(), "missing")}},
	}
	ApplyDefaults(cfg)

	_, err := BuildRuntime(context.Background(), cfg, nil)
	if err == nil {
		t.Fatal("Expected error for a missing root")
	}
	if !strings.Contains(err.Error(), "docs") {
		t.Errorf("Expected error to name the repository, got: %v", err)
	}
}

func TestInitializeMetrics_Disabled(t *testing.T) {
	m := InitializeMetrics(&Config{})
	if m.Server != nil {
		t.Error("Expected no metrics server when disabled")
	}
	if m.Repository == nil || m.Auth == nil {
		t.Error("Expected no-op collectors when disabled")
	}
}
