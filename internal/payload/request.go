package payload

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the type of content encoded into a QR symbol
type Kind string

const (
	KindURL      Kind = "url"
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindSMS      Kind = "sms"
	KindPhone    Kind = "phone"
	KindWiFi     Kind = "wifi"
	KindLocation Kind = "location"
)

const (
	defaultURL      = "https://example.com"
	defaultSecurity = "WPA"
)

// ErrUnknownKind is returned when a kind name is not one of Kinds()
var ErrUnknownKind = errors.New("unknown content kind")

// Kinds returns every supported kind in display order
func Kinds() []Kind {
	return []Kind{KindURL, KindText, KindEmail, KindSMS, KindPhone, KindWiFi, KindLocation}
}

// ParseKind converts a kind name (case-insensitive) into a Kind
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Label returns the human-readable name shown in the kind selector
func (k Kind) Label() string {
	switch k {
	case KindURL:
		return "URL"
	case KindText:
		return "Text"
	case KindEmail:
		return "Email"
	case KindSMS:
		return "SMS"
	case KindPhone:
		return "Phone"
	case KindWiFi:
		return "WiFi"
	case KindLocation:
		return "Location"
	}
	return string(k)
}

// Request is the content description for exactly one kind.
// Implementations are limited to the types in this package.
type Request interface {
	Kind() Kind
	// Content returns the primary content value (address, number, text),
	// empty for kinds that synthesize their payload from other fields.
	Content() string
	sealed()
}

type URL struct {
	Value string
}

type Text struct {
	Value string
}

type Email struct {
	Address string
	Subject string
	Body    string
}

type SMS struct {
	Number string
	Body   string
}

type Phone struct {
	Number string
}

// WiFi describes a network join payload. Empty Security means WPA.
type WiFi struct {
	SSID     string
	Password string
	Security string
}

type Location struct {
	Latitude  string
	Longitude string
}

func (URL) Kind() Kind      { return KindURL }
func (Text) Kind() Kind     { return KindText }
func (Email) Kind() Kind    { return KindEmail }
func (SMS) Kind() Kind      { return KindSMS }
func (Phone) Kind() Kind    { return KindPhone }
func (WiFi) Kind() Kind     { return KindWiFi }
func (Location) Kind() Kind { return KindLocation }

func (r URL) Content() string    { return r.Value }
func (r Text) Content() string   { return r.Value }
func (r Email) Content() string  { return r.Address }
func (r SMS) Content() string    { return r.Number }
func (r Phone) Content() string  { return r.Number }
func (WiFi) Content() string     { return "" }
func (Location) Content() string { return "" }

func (URL) sealed()      {}
func (Text) sealed()     {}
func (Email) sealed()    {}
func (SMS) sealed()      {}
func (Phone) sealed()    {}
func (WiFi) sealed()     {}
func (Location) sealed() {}

// Default is the request shown when the generator first opens
func Default() Request {
	return URL{Value: defaultURL}
}

// New returns an empty request of the given kind. Switching kinds goes
// through New so no field of the previous kind survives.
func New(kind Kind) (Request, error) {
	switch kind {
	case KindURL:
		return URL{}, nil
	case KindText:
		return Text{}, nil
	case KindEmail:
		return Email{}, nil
	case KindSMS:
		return SMS{}, nil
	case KindPhone:
		return Phone{}, nil
	case KindWiFi:
		return WiFi{}, nil
	case KindLocation:
		return Location{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
}

// Describe returns a short label for notifications and logs
func Describe(req Request) string {
	if req == nil {
		return "empty request"
	}
	switch r := req.(type) {
	case Email:
		return "Email to " + r.Address
	case SMS:
		return "SMS to " + r.Number
	case Phone:
		return "Call " + r.Number
	case WiFi:
		if r.SSID == "" {
			return "WiFi network"
		}
		return "WiFi network " + r.SSID
	case Location:
		return "Location " + orZero(r.Latitude) + "," + orZero(r.Longitude)
	}
	return req.Kind().Label()
}
