package markdown

import (
	"strings"
	"testing"
)

type panicRenderer struct{}

func (panicRenderer) Render(string) (string, error) {
	panic("boom")
}

func TestSafeRender_RecoversFromRendererPanic(t *testing.T) {
	const (
		width       = 20
		indent      = 2
		renderWidth = width - indent
	)

	rendererMu.Lock()
	prev, hadPrev := renderers[renderWidth]
	renderers[renderWidth] = panicRenderer{}
	rendererMu.Unlock()

	defer func() {
		rendererMu.Lock()
		if hadPrev {
			renderers[renderWidth] = prev
		} else {
			delete(renderers, renderWidth)
		}
		rendererMu.Unlock()
	}()

	out := SafeRender(width, indent, []byte("buy milk\n"))
	if string(out) != "  buy milk" {
		t.Fatalf("expected fallback to original markdown, got %q", string(out))
	}
}

func TestRender_BlankIsNil(t *testing.T) {
	if out := Render(40, 0, []byte(" \r\n\n")); out != nil {
		t.Fatalf("expected nil, got %q", out)
	}
}

func TestRender_IndentsEveryLine(t *testing.T) {
	out := string(Render(40, 4, []byte("- first\n- second\n")))
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Fatalf("expected list items in output, got %q", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "    ") {
			t.Fatalf("expected indented line, got %q", line)
		}
	}
}
