package branchcode

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrBranchCodeInvalid   = errors.New("branch_code_invalid")
	ErrBranchCodeTaken     = errors.New("branch_code_taken")
	ErrAllocationExhausted = errors.New("branch_code_allocation_exhausted")
)

// MaxLen is the maximum branch code length. Codes feed downstream
// stock/SKU generation, which caps the branch segment at five chars.
const MaxLen = 5

var codePattern = regexp.MustCompile(`^[A-Z0-9]{1,5}$`)

// Validate reports whether code may be assigned given the set of codes
// already in use. An empty code is always valid: it means "no code yet",
// to be auto-assigned later. The pattern check covers case, charset,
// whitespace and length in one pass.
func Validate(code string, existing map[string]bool) error {
	if code == "" {
		return nil
	}
	if !codePattern.MatchString(code) {
		return ErrBranchCodeInvalid
	}
	if existing[code] {
		return ErrBranchCodeTaken
	}
	return nil
}

// Suggest derives a short code from a display name. Single-word names
// contribute their first two consonants (falling back to the first two
// characters when the word is vowel-heavy); multi-word names contribute
// their initials. On collision the first four characters are kept as a
// base and digits 1-9 are tried in order.
func Suggest(name string, existing map[string]bool) (string, error) {
	words := strings.Fields(strings.ToUpper(strings.TrimSpace(name)))
	if len(words) == 0 {
		return "", ErrBranchCodeInvalid
	}

	var code string
	if len(words) == 1 {
		word := sanitize(words[0])
		consonants := stripVowels(word)
		if len(consonants) >= 2 {
			code = consonants[:2]
		} else if len(word) >= 2 {
			code = word[:2]
		} else {
			code = word
		}
	} else {
		var initials strings.Builder
		for _, w := range words {
			w = sanitize(w)
			if w != "" {
				initials.WriteByte(w[0])
			}
		}
		code = initials.String()
	}
	if len(code) > MaxLen {
		code = code[:MaxLen]
	}
	if code == "" {
		return "", ErrBranchCodeInvalid
	}
	if !existing[code] {
		return code, nil
	}

	base := code
	if len(base) > 4 {
		base = base[:4]
	}
	for digit := '1'; digit <= '9'; digit++ {
		candidate := base + string(digit)
		if !existing[candidate] {
			return candidate, nil
		}
	}
	return "", ErrAllocationExhausted
}

func sanitize(word string) string {
	var b strings.Builder
	for _, r := range word {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripVowels(word string) string {
	var b strings.Builder
	for _, r := range word {
		switch r {
		case 'A', 'E', 'I', 'O', 'U':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
