package sanitizer

import (
	"net/url"
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// SanitizeText is used for names, reasons and other free text.
func SanitizeText(input string) string {
	return TrimAndNormalize(input)
}

// SanitizeTextPtr applies SanitizeText in place, leaving nil untouched.
func SanitizeTextPtr(input *string) {
	if input == nil {
		return
	}
	*input = SanitizeText(*input)
}

// SanitizeCode normalizes identifiers such as inventory numbers.
func SanitizeCode(input string) string {
	p := Pipeline{
		TrimAndNormalize,
		strings.ToUpper,
	}
	return p.Apply(input)
}

func SanitizeURL(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")

	q := u.Query()
	qClean := url.Values{}
	for k, v := range q {
		if strings.HasPrefix(strings.ToLower(k), "utm_") {
			continue
		}
		for _, val := range v {
			if val = strings.TrimSpace(val); val != "" {
				qClean.Add(k, val)
			}
		}
	}
	u.RawQuery = qClean.Encode()

	return u.String()
}

func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}
