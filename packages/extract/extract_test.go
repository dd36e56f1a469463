package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONPath(t *testing.T) {
	body := `{"user": {"name": "ada", "tags": ["a", "b"], "age": 36}}`

	tests := []struct {
		name   string
		path   string
		want   string
		wantOK bool
	}{
		{"string", "user.name", "ada", true},
		{"number", "user.age", "36", true},
		{"array element", "user.tags.1", "b", true},
		{"array", "user.tags", `["a", "b"]`, true},
		{"count", "user.tags.#", "2", true},
		{"missing", "user.email", "", false},
		{"whole document", "", body, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := JSONPath(body, tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONPath_NotJSON(t *testing.T) {
	_, ok := JSONPath("<html></html>", "a")
	assert.False(t, ok)
}

func TestSelector(t *testing.T) {
	body := `<html> <head><title> Hello </title></head> <body><ul><li>one</li><li class="x"> two </li></ul></body> </html>`

	got, err := Selector(body, "title")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello"}, got)

	got, err = Selector(body, "li")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got)

	got, err = Selector(body, "li.x")
	require.NoError(t, err)
	assert.Equal(t, []string{"two"}, got)

	got, err = Selector(body, "table")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelector_Invalid(t *testing.T) {
	_, err := Selector("<p>x</p>", "p[")
	assert.Error(t, err)
}
