package sourcemap

import "testing"

func TestEncodeVLQ(t *testing.T) {
	tests := []struct {
		value int
		want  string
	}{
		{0, "A"},
		{1, "C"},
		{-1, "D"},
		{2, "E"},
		{15, "e"},
		{16, "gB"},
		{511, "+f"},
		{512, "ggB"},
	}

	for _, tt := range tests {
		got := string(encodeVLQ(nil, tt.value))
		if got != tt.want {
			t.Errorf("encodeVLQ(%d) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestEncodeLineMappings(t *testing.T) {
	tests := []struct {
		name  string
		lines []int
		want  string
	}{
		{"single line", []int{0}, "AAAA"},
		{"identity", []int{0, 1, 2}, "AAAA;AACA;AACA"},
		{"reordered", []int{2, 0}, "AAEA;AAFA"},
		{"unmapped line", []int{0, -1, 1}, "AAAA;;AACA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeLineMappings(tt.lines); got != tt.want {
				t.Errorf("EncodeLineMappings(%v) = %q, want %q", tt.lines, got, tt.want)
			}
		})
	}
}

func TestIdentityMappings(t *testing.T) {
	if got := IdentityMappings(3); got != "AAAA;AACA;AACA" {
		t.Errorf("IdentityMappings(3) = %q", got)
	}
	if got := IdentityMappings(0); got != "" {
		t.Errorf("IdentityMappings(0) = %q, want empty", got)
	}
}
