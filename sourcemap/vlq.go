package sourcemap

var base64Chars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/")

// encodeVLQ appends one base64 variable-length quantity. The first bit
// of the first digit is the sign, the next four bits carry the value,
// and bit six of every digit is the continuation marker.
func encodeVLQ(encoded []byte, value int) []byte {
	var vlq int
	if value < 0 {
		vlq = ((-value) << 1) | 1
	} else {
		vlq = value << 1
	}
	for {
		digit := vlq & 31
		vlq >>= 5
		if vlq != 0 {
			digit |= 32
		}
		encoded = append(encoded, base64Chars[digit])
		if vlq == 0 {
			return encoded
		}
	}
}

// EncodeLineMappings builds a mappings string that maps the start of
// each generated line to the given 0-based original line in source 0.
// An entry of -1 leaves the generated line unmapped.
func EncodeLineMappings(originalLines []int) string {
	var out []byte
	prevOrig := 0
	for i, orig := range originalLines {
		if i > 0 {
			out = append(out, ';')
		}
		if orig < 0 {
			continue
		}
		out = encodeVLQ(out, 0)              // generated column
		out = encodeVLQ(out, 0)              // source index delta
		out = encodeVLQ(out, orig-prevOrig)  // original line delta
		out = encodeVLQ(out, 0)              // original column
		prevOrig = orig
	}
	return string(out)
}

// IdentityMappings maps n generated lines 1:1 onto the input.
func IdentityMappings(n int) string {
	lines := make([]int, n)
	for i := range lines {
		lines[i] = i
	}
	return EncodeLineMappings(lines)
}
