package noise

import "bytes"

// Strip deletes every occurrence of each noise string from body, one string
// at a time in order. Empty strings are skipped. The result is always a new
// slice; body is not modified.
func Strip(body []byte, noise [][]byte) []byte {
	out, _ := removeAll(bytes.Clone(body), noise, false)
	return out
}

// Mask is Strip with every occurrence overwritten by NUL bytes instead of
// deleted, so byte offsets in the result still line up with body.
func Mask(body []byte, noise [][]byte) []byte {
	out, _ := removeAll(bytes.Clone(body), noise, true)
	return out
}

// removeAll works on buf in place when masking; callers pass a copy. It
// returns the number of bytes covered by matches.
func removeAll(buf []byte, noise [][]byte, mask bool) ([]byte, int) {
	removed := 0
	for _, s := range noise {
		if len(s) == 0 {
			continue
		}
		n := bytes.Count(buf, s)
		if n == 0 {
			continue
		}
		removed += n * len(s)
		if !mask {
			buf = bytes.ReplaceAll(buf, s, nil)
			continue
		}
		for i := 0; ; {
			j := bytes.Index(buf[i:], s)
			if j < 0 {
				break
			}
			start := i + j
			clear(buf[start : start+len(s)])
			i = start + len(s)
		}
	}
	return buf, removed
}

// erase removes spans (ascending, non-overlapping [start, end) pairs) from
// body, or blanks them with NUL bytes when mask is set.
func erase(body []byte, spans [][]int, mask bool) []byte {
	if len(spans) == 0 {
		return body
	}
	if mask {
		out := bytes.Clone(body)
		for _, s := range spans {
			clear(out[s[0]:s[1]])
		}
		return out
	}
	out := make([]byte, 0, len(body))
	prev := 0
	for _, s := range spans {
		out = append(out, body[prev:s[0]]...)
		prev = s[1]
	}
	return append(out, body[prev:]...)
}

func spanBytes(spans [][]int) int {
	n := 0
	for _, s := range spans {
		n += s[1] - s[0]
	}
	return n
}
