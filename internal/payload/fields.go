package payload

import (
	"fmt"
	"strings"
)

// Form field names shared by the HTML form and the JSON API
const (
	FieldContent   = "content"
	FieldSubject   = "subject"
	FieldBody      = "body"
	FieldSSID      = "ssid"
	FieldPassword  = "password"
	FieldSecurity  = "security"
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
)

// InputType tells the form renderer which control to draw
type InputType string

const (
	InputText     InputType = "text"
	InputTextArea InputType = "textarea"
	InputEmail    InputType = "email"
	InputTel      InputType = "tel"
	InputURL      InputType = "url"
	InputPassword InputType = "password"
	InputSelect   InputType = "select"
)

// Field describes one input of a kind's form
type Field struct {
	Name        string
	Label       string
	Placeholder string
	Type        InputType
	Required    bool
	Options     []string
}

// SecurityOptions are the WiFi authentication types offered in the form
var SecurityOptions = []string{"WPA", "WEP", "nopass"}

// Fields returns the inputs rendered for kind, in order
func Fields(kind Kind) []Field {
	switch kind {
	case KindURL:
		return []Field{
			{Name: FieldContent, Label: "Website URL", Placeholder: "https://example.com", Type: InputURL, Required: true},
		}
	case KindText:
		return []Field{
			{Name: FieldContent, Label: "Text", Placeholder: "Enter your text", Type: InputTextArea, Required: true},
		}
	case KindEmail:
		return []Field{
			{Name: FieldContent, Label: "Email address", Placeholder: "name@example.com", Type: InputEmail, Required: true},
			{Name: FieldSubject, Label: "Subject", Placeholder: "Optional subject", Type: InputText},
			{Name: FieldBody, Label: "Message", Placeholder: "Optional message", Type: InputTextArea},
		}
	case KindSMS:
		return []Field{
			{Name: FieldContent, Label: "Phone number", Placeholder: "+1 555 123 4567", Type: InputTel, Required: true},
			{Name: FieldBody, Label: "Message", Placeholder: "Optional message", Type: InputTextArea},
		}
	case KindPhone:
		return []Field{
			{Name: FieldContent, Label: "Phone number", Placeholder: "+1 555 123 4567", Type: InputTel, Required: true},
		}
	case KindWiFi:
		return []Field{
			{Name: FieldSSID, Label: "Network name (SSID)", Placeholder: "MyNetwork", Type: InputText},
			{Name: FieldPassword, Label: "Password", Placeholder: "Network password", Type: InputPassword},
			{Name: FieldSecurity, Label: "Security", Type: InputSelect, Options: SecurityOptions},
		}
	case KindLocation:
		return []Field{
			{Name: FieldLatitude, Label: "Latitude", Placeholder: "40.7128", Type: InputText},
			{Name: FieldLongitude, Label: "Longitude", Placeholder: "-74.0060", Type: InputText},
		}
	}
	return nil
}

// FromValues builds a request of kind from named field values.
// Names that do not belong to kind are ignored.
func FromValues(kind Kind, values map[string]string) (Request, error) {
	get := func(name string) string { return values[name] }

	switch kind {
	case KindURL:
		return URL{Value: get(FieldContent)}, nil
	case KindText:
		return Text{Value: get(FieldContent)}, nil
	case KindEmail:
		return Email{Address: get(FieldContent), Subject: get(FieldSubject), Body: get(FieldBody)}, nil
	case KindSMS:
		return SMS{Number: get(FieldContent), Body: get(FieldBody)}, nil
	case KindPhone:
		return Phone{Number: get(FieldContent)}, nil
	case KindWiFi:
		// the select only offers SecurityOptions; API clients may send any
		// authentication type and it is written through as-is
		return WiFi{SSID: get(FieldSSID), Password: get(FieldPassword), Security: get(FieldSecurity)}, nil
	case KindLocation:
		return Location{Latitude: strings.TrimSpace(get(FieldLatitude)), Longitude: strings.TrimSpace(get(FieldLongitude))}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
}

// Values is the inverse of FromValues, used to re-render a filled form
func Values(req Request) map[string]string {
	values := map[string]string{}
	switch r := req.(type) {
	case URL:
		values[FieldContent] = r.Value
	case Text:
		values[FieldContent] = r.Value
	case Email:
		values[FieldContent] = r.Address
		values[FieldSubject] = r.Subject
		values[FieldBody] = r.Body
	case SMS:
		values[FieldContent] = r.Number
		values[FieldBody] = r.Body
	case Phone:
		values[FieldContent] = r.Number
	case WiFi:
		values[FieldSSID] = r.SSID
		values[FieldPassword] = r.Password
		values[FieldSecurity] = r.Security
		if r.Security == "" {
			values[FieldSecurity] = defaultSecurity
		}
	case Location:
		values[FieldLatitude] = r.Latitude
		values[FieldLongitude] = r.Longitude
	}
	return values
}
