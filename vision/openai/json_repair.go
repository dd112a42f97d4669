package openai

import "strings"

// cleanResponse strips markdown fences and any text around the first JSON object.
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return repairJSON(s)
}

// repairJSON quotes bare object keys and drops trailing commas, the two
// mistakes small vision models make most often.
func repairJSON(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+8)

	for i := 0; i < len(in); i++ {
		ch := in[i]
		switch {
		case ch == ',' && nextSignificant(in, i+1) == '}':
			continue
		case (ch == '{' || ch == ',') && i+1 < len(in):
			out = append(out, ch)
			j := i + 1
			for j < len(in) && isSpace(in[j]) {
				out = append(out, in[j])
				j++
			}
			k := j
			for k < len(in) && (isLetter(in[k]) || in[k] == '_') {
				k++
			}
			if k > j && nextSignificant(in, k) == ':' {
				out = append(out, '"')
				out = append(out, in[j:k]...)
				out = append(out, '"')
				i = k - 1
			} else {
				i = j - 1
			}
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func nextSignificant(in []rune, from int) rune {
	for i := from; i < len(in); i++ {
		if !isSpace(in[i]) {
			return in[i]
		}
	}
	return 0
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
