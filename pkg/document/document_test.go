package document

import (
	"errors"
	"testing"
)

const page = `<!DOCTYPE html>
<html><body>
<div class="masthead">
  <img class="player-portrait" src="https://cdn.example/portrait.png">
  <div class="player-level" style="background-image:url(x)"><div class="u-vertical-center"> 42 </div></div>
</div>
<ul><li class="a">one</li><li class="a b">two</li></ul>
</body></html>`

func TestFind(t *testing.T) {
	doc, err := ParseBytes([]byte(page), "https://example/career")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	n := doc.FindOptional("div.player-level div.u-vertical-center")
	if n == nil {
		t.Fatal("FindOptional(level) = nil")
	}
	if n.Text() != "42" {
		t.Errorf("Text() = %q, want %q", n.Text(), "42")
	}

	if doc.FindOptional("div.competitive-rank") != nil {
		t.Error("FindOptional(missing) != nil")
	}

	img, err := doc.FindRequired("img.player-portrait")
	if err != nil {
		t.Fatalf("FindRequired(portrait) error = %v", err)
	}
	if src, ok := img.Attr("src"); !ok || src != "https://cdn.example/portrait.png" {
		t.Errorf("Attr(src) = %q, %v", src, ok)
	}

	items := doc.FindAll("li.a")
	if len(items) != 2 {
		t.Fatalf("FindAll(li.a) returned %d nodes, want 2", len(items))
	}
	if !items[1].HasClass("b") || items[0].HasClass("b") {
		t.Error("HasClass(b) mismatch")
	}
}

func TestFindRequiredMissing(t *testing.T) {
	doc, err := ParseBytes([]byte(page), "https://example/career")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	_, err = doc.FindRequired("img.nope")
	if !errors.Is(err, ErrStructure) {
		t.Fatalf("FindRequired(missing) error = %v, want ErrStructure", err)
	}
	var se *StructureError
	if !errors.As(err, &se) || se.Locator != "img.nope" || se.URL != "https://example/career" {
		t.Errorf("FindRequired(missing) error = %#v", err)
	}
}

func TestRelease(t *testing.T) {
	doc, err := ParseBytes([]byte(page), "u")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	doc.Release()
	doc.Release()
	if !doc.Released() {
		t.Error("Released() = false after Release")
	}
	if doc.FindOptional("img") != nil {
		t.Error("FindOptional after Release != nil")
	}
	if _, err := doc.FindRequired("img"); !errors.Is(err, ErrReleased) {
		t.Errorf("FindRequired after Release error = %v, want ErrReleased", err)
	}

	var nilDoc *Document
	nilDoc.Release()
	if !nilDoc.Released() {
		t.Error("nil Document not reported as released")
	}
}
