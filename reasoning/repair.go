// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reasoning

// repairJSON fixes object keys that model replies commonly get wrong:
// keys with no quotes at all (`{is_match: true}`) and keys missing only the
// opening quote (`{is_match": true}`). String contents are left untouched.
func repairJSON(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+16)
	inString := false

	for i := 0; i < len(in); i++ {
		ch := in[i]

		if inString {
			out = append(out, ch)
			switch ch {
			case '\\':
				if i+1 < len(in) {
					i++
					out = append(out, in[i])
				}
			case '"':
				inString = false
			}
			continue
		}

		out = append(out, ch)
		switch ch {
		case '"':
			inString = true
			continue
		case '{', ',':
		default:
			continue
		}

		// Copy whitespace after the delimiter
		j := i + 1
		for j < len(in) && isSpace(in[j]) {
			out = append(out, in[j])
			j++
		}
		if j >= len(in) || !isKeyStart(in[j]) {
			i = j - 1
			continue
		}

		start := j
		for j < len(in) && isKeyRune(in[j]) {
			j++
		}
		key := in[start:j]

		k := j
		for k < len(in) && isSpace(in[k]) {
			k++
		}
		switch {
		case j+1 < len(in) && in[j] == '"' && in[j+1] == ':':
			// Missing opening quote
			out = append(out, '"')
			out = append(out, key...)
			out = append(out, '"')
			i = j
		case k < len(in) && in[k] == ':':
			// Unquoted key
			out = append(out, '"')
			out = append(out, key...)
			out = append(out, '"')
			i = j - 1
		default:
			out = append(out, key...)
			i = j - 1
		}
	}

	return string(out)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

func isKeyStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isKeyRune(r rune) bool {
	return isKeyStart(r) || (r >= '0' && r <= '9')
}
