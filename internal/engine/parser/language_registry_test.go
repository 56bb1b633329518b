package parser

import "testing"

func TestBuildLanguageRegistry_Defaults(t *testing.T) {
	registry, err := BuildLanguageRegistry(nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"javascript", "typescript", "tsx"} {
		if !registry[id].Enabled {
			t.Fatalf("expected %s to be enabled by default", id)
		}
	}
}

func TestBuildLanguageRegistry_Overrides(t *testing.T) {
	disabled := false
	registry, err := BuildLanguageRegistry(map[string]LanguageOverride{
		"tsx":        {Enabled: &disabled},
		"javascript": {Extensions: []string{"JS", ".es6", "js"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if registry["tsx"].Enabled {
		t.Fatal("expected tsx to be disabled")
	}
	got := registry["javascript"].Extensions
	if len(got) != 2 || got[0] != ".es6" || got[1] != ".js" {
		t.Fatalf("unexpected normalized extensions: %v", got)
	}
}

func TestBuildLanguageRegistry_RejectsDuplicateExtensions(t *testing.T) {
	_, err := BuildLanguageRegistry(map[string]LanguageOverride{
		"typescript": {Extensions: []string{".js"}},
	})
	if err == nil {
		t.Fatal("expected duplicate extension validation error")
	}
}

func TestBuildLanguageRegistry_RejectsUnknownLanguage(t *testing.T) {
	_, err := BuildLanguageRegistry(map[string]LanguageOverride{
		"python": {Extensions: []string{".py"}},
	})
	if err == nil {
		t.Fatal("expected unknown language override error")
	}
}
