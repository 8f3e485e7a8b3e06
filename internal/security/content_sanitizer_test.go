package security

import "testing"

func TestContentSanitizer_StripsHTMLTags(t *testing.T) {
	s := NewContentSanitizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text unchanged", "buy milk", "buy milk"},
		{"script tag removed", `<script>alert("x")</script>hello`, "hello"},
		{"formatting tags stripped", "<b>bold</b> task", "bold task"},
		{"anchor stripped keeps text", `<a href="https://evil.example">click</a>`, "click"},
		{"img removed entirely", `note<img src=x onerror=alert(1)>`, "note"},
		{"whitespace trimmed", "  padded  ", "padded"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.in)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestContentSanitizer_PreservesJapaneseText(t *testing.T) {
	s := NewContentSanitizer()

	in := "牛乳を買う"
	if got := s.Sanitize(in); got != in {
		t.Errorf("Sanitize(%q) = %q", in, got)
	}
}
