package onboarding

import (
	"fmt"
	"strings"
)

// noPhoneSentinels are accepted answers meaning the child has no phone.
var noPhoneSentinels = []string{"não tem", "nao tem", "não possui", "nao possui", "nenhum"}

// IsNoPhone reports whether the input is the "does not have" sentinel.
func IsNoPhone(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, sent := range noPhoneSentinels {
		if s == sent {
			return true
		}
	}
	return false
}

// NormalizePhone converts a typed phone number to canonical international
// form ("+<country><area><number>"). Local numbers with an area code get the
// default country calling code prepended.
func NormalizePhone(raw, defaultCountry string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	d = strings.TrimPrefix(d, "00")

	switch {
	case len(d) == 10 || len(d) == 11:
		// Area code + number, no country code.
		d = defaultCountry + d
	case len(d) >= 12 && len(d) <= 13 && strings.HasPrefix(d, defaultCountry):
		// Already carries the country code.
	default:
		return "", fmt.Errorf("unrecognized phone number %q", raw)
	}
	return "+" + d, nil
}

// parsePhoneList parses 1..2 comma-separated phone numbers, always forcing
// the sender's own number into the result, capped at two entries.
func parsePhoneList(raw, sender, defaultCountry string) ([]string, error) {
	parts := strings.Split(raw, ",")
	if len(parts) < 1 || len(parts) > 2 {
		return nil, fmt.Errorf("expected 1 or 2 numbers, got %d", len(parts))
	}
	var phones []string
	for _, p := range parts {
		n, err := NormalizePhone(p, defaultCountry)
		if err != nil {
			return nil, err
		}
		phones = append(phones, n)
	}

	if senderNorm, err := NormalizePhone(sender, defaultCountry); err == nil {
		found := false
		for _, p := range phones {
			if p == senderNorm {
				found = true
				break
			}
		}
		if !found {
			phones = append([]string{senderNorm}, phones...)
		}
	}
	if len(phones) > 2 {
		phones = phones[:2]
	}
	return phones, nil
}
