package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaming(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"pascal spaces", PascalCase, "pet store", "PetStore"},
		{"pascal dashes", PascalCase, "user-profile", "UserProfile"},
		{"pascal leading digit", PascalCase, "1st", "_1st"},
		{"camel underscore", CamelCase, "User_list", "userList"},
		{"camel keeps inner case", CamelCase, "GetPetById", "getPetById"},
		{"camel header", CamelCase, "X-Request-Id", "xRequestId"},
		{"sanitize dotted", SanitizeTypeName, "Api.Models.User", "ApiModelsUser"},
		{"sanitize identifier", SanitizeTypeName, "UserDto", "UserDto"},
		{"sanitize digit", SanitizeTypeName, "9Lives", "_9Lives"},
		{"property key identifier", PropertyKey, "name", "name"},
		{"property key quoted", PropertyKey, "x-id", "'x-id'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}

func TestUniqueName(t *testing.T) {
	taken := map[string]bool{"get": true, "get2": true}
	assert.Equal(t, "get3", uniqueName("get", taken))
	assert.Equal(t, "list", uniqueName("list", taken))
}

func TestQuoteEscapes(t *testing.T) {
	assert.Equal(t, `'it\'s'`, Quote("it's"))
}
