package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MissingToken is the textual sentinel standing in for an absent value
// inside serialized text. It never appears inside an in-memory series,
// which uses NaN instead.
const MissingToken = "nan"

// NormalizeMissing renders a value as its serialized token: the sentinel
// for NaN, otherwise the shortest decimal form that parses back exactly.
// Everyday magnitudes stay in plain decimal notation; exponent form is
// reserved for values where a fixed form would be unreadable.
func NormalizeMissing(v float64) string {
	if math.IsNaN(v) {
		return MissingToken
	}
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DenormalizeMissing is the inverse of NormalizeMissing. The sentinel is
// matched case-insensitively; any other token must parse as a float.
func DenormalizeMissing(token string) (float64, error) {
	tok := strings.TrimSpace(token)
	if strings.EqualFold(tok, MissingToken) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: value %q is not a number", ErrMalformed, token)
	}
	return v, nil
}

// IsMissingToken reports whether a serialized token denotes a missing value.
func IsMissingToken(token string) bool {
	return strings.EqualFold(strings.TrimSpace(token), MissingToken)
}
