// Package text splits post text into platform-sized chunks.
package text

// DefaultMaxChars is the per-post character budget of the platform.
const DefaultMaxChars = 280

// Split breaks text into chunks of at most maxChars runes. A chunk ends at the
// last space before maxChars; the space itself is dropped. When the window
// holds no space the text is cut hard at maxChars. The remainder is always
// the last chunk, so empty input yields a single empty chunk.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		panic("text: maxChars must be positive")
	}

	rest := []rune(text)
	var chunks []string
	for len(rest) > maxChars {
		idx := lastSpace(rest[:maxChars])
		switch {
		case idx < 0:
			chunks = append(chunks, string(rest[:maxChars]))
			rest = rest[maxChars:]
			if len(rest) > 0 && rest[0] == ' ' {
				rest = rest[1:]
			}
		case idx == 0:
			rest = rest[1:]
		default:
			chunks = append(chunks, string(rest[:idx]))
			rest = rest[idx+1:]
		}
	}
	return append(chunks, string(rest))
}

func lastSpace(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == ' ' {
			return i
		}
	}
	return -1
}
