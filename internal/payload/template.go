package payload

import (
	"strings"
)

// Template maps a request to the literal string encoded into the QR symbol.
// It never fails; callers run Validate first when blank content matters.
func Template(req Request) string {
	if req == nil {
		return ""
	}

	switch r := req.(type) {
	case URL:
		return r.Value
	case Text:
		return r.Value
	case Email:
		return templateEmail(r)
	case SMS:
		s := "sms:" + r.Number
		if r.Body != "" {
			s += "?body=" + EscapeComponent(r.Body)
		}
		return s
	case Phone:
		return "tel:" + r.Number
	case WiFi:
		security := r.Security
		if security == "" {
			security = defaultSecurity
		}
		return "WIFI:T:" + security + ";S:" + r.SSID + ";P:" + r.Password + ";H:false;;"
	case Location:
		return "geo:" + orZero(r.Latitude) + "," + orZero(r.Longitude)
	}

	return req.Content()
}

// templateEmail builds a mailto URI. The address is kept verbatim,
// subject and body are escaped separately.
func templateEmail(r Email) string {
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(r.Address)

	sep := "?"
	if r.Subject != "" {
		b.WriteString(sep + "subject=" + EscapeComponent(r.Subject))
		sep = "&"
	}
	if r.Body != "" {
		b.WriteString(sep + "body=" + EscapeComponent(r.Body))
	}
	return b.String()
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

const upperhex = "0123456789ABCDEF"

// EscapeComponent percent-encodes s the way browsers encode a URI component:
// ASCII letters, digits and -_.!~*'() are kept, every other UTF-8 byte
// becomes %XX. Spaces become %20, never '+'.
func EscapeComponent(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreservedComponent(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreservedComponent(c) {
			buf = append(buf, c)
			continue
		}
		buf = append(buf, '%', upperhex[c>>4], upperhex[c&0x0f])
	}
	return string(buf)
}

func unreservedComponent(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
