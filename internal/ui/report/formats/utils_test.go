package formats

import "testing"

func TestRelativeURI(t *testing.T) {
	t.Parallel()

	cases := []struct {
		root, path, want string
	}{
		{"/project", "/project/src/a.js", "src/a.js"},
		{"/project", "/elsewhere/b.js", "/elsewhere/b.js"},
		{"", "/project/src/a.js", "/project/src/a.js"},
		{"/project", "src/a.js", "src/a.js"},
	}
	for _, tc := range cases {
		if got := relativeURI(tc.root, tc.path); got != tc.want {
			t.Errorf("relativeURI(%q, %q) = %q, want %q", tc.root, tc.path, got, tc.want)
		}
	}
}

func TestEscapeField(t *testing.T) {
	t.Parallel()

	if got := escapeField("a\tb\nc"); got != `a\tb\nc` {
		t.Fatalf("unexpected escape: %q", got)
	}
}
