package richmenu

import (
	"testing"

	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
)

func TestRegistrySetGet(t *testing.T) {
	reg := NewRegistry()

	if _, ok := reg.Get(catalog.Indonesian); ok {
		t.Fatal("expected empty registry miss")
	}

	reg.Set(catalog.Indonesian, "richmenu-aaa")
	id, ok := reg.Get(catalog.Indonesian)
	if !ok || id != "richmenu-aaa" {
		t.Fatalf("got %q ok=%v, want richmenu-aaa", id, ok)
	}

	reg.Set(catalog.Indonesian, "richmenu-bbb")
	if id, _ := reg.Get(catalog.Indonesian); id != "richmenu-bbb" {
		t.Fatalf("got %q after overwrite, want richmenu-bbb", id)
	}
}

func TestRegistryLanguageFor(t *testing.T) {
	reg := NewRegistry()
	reg.Set(catalog.Vietnamese, "richmenu-vi")

	lang, ok := reg.LanguageFor("richmenu-vi")
	if !ok || lang != catalog.Vietnamese {
		t.Fatalf("got %q ok=%v, want vi", lang, ok)
	}
	if _, ok := reg.LanguageFor("richmenu-unknown"); ok {
		t.Fatal("unknown menu ID should not resolve")
	}
}

func TestRegistrySnapshotIsCopy(t *testing.T) {
	reg := NewRegistry()
	reg.Set(catalog.English, "richmenu-en")

	snap := reg.Snapshot()
	snap[catalog.English] = "tampered"
	snap[catalog.Chinese] = "injected"

	if id, _ := reg.Get(catalog.English); id != "richmenu-en" {
		t.Fatalf("registry mutated through snapshot: %q", id)
	}
	if _, ok := reg.Get(catalog.Chinese); ok {
		t.Fatal("registry gained entry through snapshot")
	}
}

func TestRegistryComplete(t *testing.T) {
	reg := NewRegistry()
	if reg.Complete() {
		t.Fatal("empty registry reported complete")
	}

	for _, lang := range catalog.Codes() {
		reg.Set(lang, "richmenu-"+string(lang))
	}
	if !reg.Complete() {
		t.Fatal("full registry reported incomplete")
	}
}
