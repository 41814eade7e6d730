package identity

import "strings"

// Normalization is pure and never fails: malformed input degrades to an
// empty or best-effort result so callers can treat missing and unusable
// contact data the same way.

const (
	countryCodeBR = "55"

	landlineDigits = 10
	mobileDigits   = 11
	cpfDigits      = 11
	cnpjDigits     = 14
)

// NormalizePhone reduces a raw phone string to its canonical DDD+number
// digits. The result is always 0, 10, or 11 digits long.
func NormalizePhone(raw string) string {
	d := digitsOnly(raw)

	// Country code, dialed or stored with it.
	if len(d) > mobileDigits && strings.HasPrefix(d, countryCodeBR) {
		d = d[len(countryCodeBR):]
	}

	// Carrier-selection prefix: 0 + two-digit carrier code.
	if len(d) > mobileDigits && d[0] == '0' {
		d = d[3:]
	}

	// International (00) and trunk (0) prefixes.
	for len(d) > mobileDigits {
		switch {
		case strings.HasPrefix(d, "00"):
			d = d[2:]
		case strings.HasPrefix(d, "0"):
			d = d[1:]
		default:
			// No recognizable prefix left; take the local number
			// from the tail.
			return d[len(d)-mobileDigits:]
		}
	}

	if len(d) == mobileDigits || len(d) == landlineDigits {
		return d
	}
	return ""
}

// NormalizeEmail lower-cases and trims an email address. No format
// validation is performed here.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeCPF strips formatting from a CPF. Returns the bare 11 digits,
// or "" when the input does not contain exactly 11.
func NormalizeCPF(raw string) string {
	d := digitsOnly(raw)
	if len(d) != cpfDigits {
		return ""
	}
	return d
}

// NormalizeCNPJ strips formatting from a CNPJ. Returns the bare 14 digits,
// or "" when the input does not contain exactly 14.
func NormalizeCNPJ(raw string) string {
	d := digitsOnly(raw)
	if len(d) != cnpjDigits {
		return ""
	}
	return d
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
