package chain

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

// field is one key/value pair of a canonical object. Objects are encoded in
// the order their fields are listed, never in map or struct order, so the
// field lists below are the hashing contract. Reordering or renaming any key
// invalidates every stored chain head.
type field struct {
	key   string
	value any
}

func payloadFields(ev domain.LedgerEvent) []field {
	return []field{
		{"id", ev.ID},
		{"type", ev.Type},
		{"date", ev.Date},
		{"tenantId", ev.TenantID},
		{"tenantName", ev.TenantName},
		{"propertyName", ev.PropertyName},
		{"unit", ev.Unit},
		{"amount", ev.Amount},
		{"method", ev.Method},
		{"notes", ev.Notes},
	}
}

func linkFields(index int, payloadHash, prevHash string) []field {
	return []field{
		{"index", index},
		{"payloadHash", payloadHash},
		{"prevHash", prevHash},
	}
}

// encodeObject writes fields as compact JSON with no insignificant
// whitespace and without HTML escaping.
func encodeObject(fields []field) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(&buf, f.key)
		buf.WriteByte(':')
		writeValue(&buf, f.value)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

func writeValue(buf *bytes.Buffer, v any) {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		writeString(buf, val)
	case *string:
		if val == nil {
			buf.WriteString("null")
			return
		}
		writeString(buf, *val)
	case int:
		buf.WriteString(strconv.Itoa(val))
	case decimal.NullDecimal:
		if !val.Valid {
			buf.WriteString("null")
			return
		}
		buf.WriteString(numberText(val.Decimal))
	default:
		panic("chain: unsupported canonical value type")
	}
}

// numberText renders d the way a JavaScript number prints: the shortest
// digits that round-trip the float64, in exponent form below 1e-6 and from
// 1e21 up. Precision beyond float64 is lost, as it would be for a JS amount.
func numberText(d decimal.Decimal) string {
	f, _ := d.Float64()
	if f == 0 {
		return "0"
	}
	if math.IsInf(f, 0) {
		// JSON.stringify writes non-finite numbers as null.
		return "null"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	// 'e' with -1 precision yields the shortest round-trip form d.ddde±x.
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mant, expText, _ := strings.Cut(sci, "e")
	digits := strings.Replace(mant, ".", "", 1)
	exp, _ := strconv.Atoi(expText)
	k := len(digits)
	n := exp + 1

	var out string
	switch {
	case k <= n && n <= 21:
		out = digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		out = digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		out = "0." + strings.Repeat("0", -n) + digits
	default:
		e := n - 1
		expSign := "+"
		if e < 0 {
			expSign = "-"
			e = -e
		}
		mantissa := digits[:1]
		if k > 1 {
			mantissa += "." + digits[1:]
		}
		out = mantissa + "e" + expSign + strconv.Itoa(e)
	}
	return sign + out
}

const hexDigits = "0123456789abcdef"

// writeString quotes s the way JSON.stringify does: only the quote, the
// backslash and control characters are escaped. U+2028, U+2029 and HTML
// characters pass through. Invalid UTF-8 becomes U+FFFD.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"':
				buf.WriteString(`\"`)
			case '\\':
				buf.WriteString(`\\`)
			case '\b':
				buf.WriteString(`\b`)
			case '\f':
				buf.WriteString(`\f`)
			case '\n':
				buf.WriteString(`\n`)
			case '\r':
				buf.WriteString(`\r`)
			case '\t':
				buf.WriteString(`\t`)
			default:
				if c < 0x20 {
					buf.WriteString(`\u00`)
					buf.WriteByte(hexDigits[c>>4])
					buf.WriteByte(hexDigits[c&0xf])
				} else {
					buf.WriteByte(c)
				}
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune(utf8.RuneError)
		} else {
			buf.WriteString(s[i : i+size])
		}
		i += size
	}
	buf.WriteByte('"')
}
