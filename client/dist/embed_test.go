package clientdist

import (
	"strings"
	"testing"
)

// The client has no JavaScript test harness; these check the frame handling
// the server relies on is present in the embedded source.
func TestClientHonoursFrameFields(t *testing.T) {
	js := string(PagekitJS)
	tests := []struct {
		name string
		want string
	}{
		{"animate duration", "var ms = f.ms || 0;"},
		{"animate timing", "requestAnimationFrame(step)"},
		{"banner markup", "box.innerHTML = d.message"},
		{"center alignment", "-(d.width / 2)"},
		{"click suppression", "e.preventDefault()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(js, tt.want) {
				t.Errorf("pagekit.js missing %q", tt.want)
			}
		})
	}
	if strings.Contains(js, `behavior: "smooth"`) {
		t.Error("animate must not defer timing to the browser")
	}
}

func TestIndexLoadsClient(t *testing.T) {
	if !strings.Contains(IndexHTML, "pagekit.js") {
		t.Error("index page does not load pagekit.js")
	}
	if !strings.Contains(IndexHTML, `id="scroll-to-top"`) {
		t.Error("index page has no scroll-to-top affordance")
	}
}
