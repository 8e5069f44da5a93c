package provider

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type fakeProvider struct {
	name string
}

func (f *fakeProvider) Name() string                       { return f.name }
func (f *fakeProvider) IsAvailable(_ context.Context) bool { return true }

func TestRegistry(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	reg.RegisterFactory("fake", func(cfg map[string]any) (*fakeProvider, error) {
		name, _ := cfg["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("name required")
		}
		return &fakeProvider{name: name}, nil
	})

	t.Run("create from factory", func(t *testing.T) {
		p, err := reg.Create("fake", map[string]any{"name": "a"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if p.Name() != "a" {
			t.Errorf("expected name a, got %s", p.Name())
		}
	})

	t.Run("factory errors propagate", func(t *testing.T) {
		if _, err := reg.Create("fake", nil); err == nil {
			t.Error("expected factory error for missing name")
		}
	})

	t.Run("unknown backend names the alternatives", func(t *testing.T) {
		_, err := reg.Create("missing", nil)
		if err == nil {
			t.Fatal("expected error for unregistered backend")
		}
		if !strings.Contains(err.Error(), "fake") {
			t.Errorf("error should list registered backends, got %q", err.Error())
		}
	})

	t.Run("names are sorted", func(t *testing.T) {
		reg.RegisterFactory("zz", func(map[string]any) (*fakeProvider, error) { return nil, nil })
		reg.RegisterFactory("aa", func(map[string]any) (*fakeProvider, error) { return nil, nil })
		names := reg.Names()
		if len(names) != 3 {
			t.Fatalf("expected 3 registered names, got %v", names)
		}
		for i := 1; i < len(names); i++ {
			if names[i-1] > names[i] {
				t.Errorf("Names not sorted: %v", names)
			}
		}
	})
}
