package compact

import (
	"errors"
	"strings"
	"testing"
)

// FuzzClassify checks the shape rules hold for arbitrary strings and that header
// decoding never panics.
func FuzzClassify(f *testing.F) {
	f.Add("a.b.c")
	f.Add("a..c.d.e")
	f.Add("a.b.c.d")
	f.Add("")
	f.Add("eyJhbGciOiJIUzI1NiJ9.e30.sig")

	f.Fuzz(func(t *testing.T, input string) {
		shape, parts, err := Classify(input)
		n := strings.Count(input, ".") + 1
		if err != nil {
			if !errors.Is(err, ErrNotAToken) {
				t.Fatalf("unexpected error type: %v", err)
			}
			return
		}
		switch shape {
		case ShapeSigned:
			if n != 3 {
				t.Fatalf("signed shape with %d segments", n)
			}
		case ShapeEncrypted:
			if n != 5 {
				t.Fatalf("encrypted shape with %d segments", n)
			}
		default:
			t.Fatalf("unexpected shape %v", shape)
		}
		for i, p := range parts {
			if p == "" && !(shape == ShapeEncrypted && i == 1) {
				t.Fatalf("empty segment %d accepted", i)
			}
		}
		_, _ = DecodeHeader(parts[0])
	})
}
