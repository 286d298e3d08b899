package payload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	req := Default()
	assert.Equal(t, KindURL, req.Kind())
	assert.Equal(t, "https://example.com", Template(req))
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind("  WiFi ")
	require.NoError(t, err)
	assert.Equal(t, KindWiFi, got)

	_, err = ParseKind("vcard")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestNewResetsFields(t *testing.T) {
	for _, k := range Kinds() {
		req, err := New(k)
		require.NoError(t, err)
		assert.Equal(t, k, req.Kind())
		assert.Empty(t, req.Content())
	}

	_, err := New(Kind("bogus"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestFieldsCoverEveryKind(t *testing.T) {
	for _, k := range Kinds() {
		fields := Fields(k)
		require.NotEmpty(t, fields, "kind %s has no fields", k)

		hasRequired := false
		for _, f := range fields {
			if f.Required {
				hasRequired = true
			}
		}
		assert.Equal(t, RequiresContent(k), hasRequired, "kind %s", k)
	}
}

func TestFromValuesRoundTrip(t *testing.T) {
	reqs := []Request{
		URL{Value: "https://go.dev"},
		Text{Value: "hello"},
		Email{Address: "a@b.com", Subject: "s", Body: "b"},
		SMS{Number: "123", Body: "hi"},
		Phone{Number: "123"},
		WiFi{SSID: "Home", Password: "pw", Security: "WEP"},
		Location{Latitude: "1", Longitude: "2"},
	}

	for _, req := range reqs {
		got, err := FromValues(req.Kind(), Values(req))
		require.NoError(t, err)
		assert.Equal(t, req, got)
	}
}

func TestFromValuesIgnoresForeignFields(t *testing.T) {
	req, err := FromValues(KindURL, map[string]string{
		FieldContent: "https://go.dev",
		FieldSSID:    "leftover",
	})
	require.NoError(t, err)
	assert.Equal(t, URL{Value: "https://go.dev"}, req)
}

func TestFromValuesKeepsCustomSecurity(t *testing.T) {
	req, err := FromValues(KindWiFi, map[string]string{FieldSSID: "Home", FieldSecurity: "WPA2"})
	require.NoError(t, err)
	assert.Equal(t, WiFi{SSID: "Home", Security: "WPA2"}, req)
	assert.Equal(t, "WIFI:T:WPA2;S:Home;P:;H:false;;", Template(req))
	assert.Equal(t, "WPA2", Values(req)[FieldSecurity])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"blank text", Text{Value: "   "}, true},
		{"empty url", URL{}, true},
		{"empty email", Email{Subject: "only subject"}, true},
		{"empty sms", SMS{Body: "only body"}, true},
		{"empty phone", Phone{}, true},
		{"filled text", Text{Value: "x"}, false},
		{"empty wifi allowed", WiFi{}, false},
		{"empty location allowed", Location{}, false},
		{"nil", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBlankContent)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, FieldContent, verr.Field)
			assert.NotEmpty(t, verr.UserMessage())
		})
	}
}
