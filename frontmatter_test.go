package mdt

import "testing"

func TestStripFrontMatter(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"yaml", "---\ntitle: test\n---\n# Body\n", "# Body\n"},
		{"toml", "+++\ntitle = \"test\"\n+++\nbody\n", "body\n"},
		{"json-ish", ";;;\n{\"title\": 1}\n;;;\ntext\n", "text\n"},
		{"none", "# Just a doc\n", "# Just a doc\n"},
		{"unterminated", "---\ntitle: test\nno closing\n", "---\ntitle: test\nno closing\n"},
		{"rule-not-front-matter", "---\n\ntext after a rule\n", "---\n\ntext after a rule\n"},
		{"crlf", "---\r\ntitle: test\r\n---\r\nbody\r\n", "body\r\n"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripFrontMatter(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
