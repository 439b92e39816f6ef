package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMustString(t *testing.T) {
	assert.Equal(t, "paywall", MustString("paywall", "module name"))
	assert.PanicsWithValue(t, "module name is required", func() { MustString(" \t", "module name") })
}

func TestMustPrefix(t *testing.T) {
	for in, want := range map[string]string{
		"paywall":    "/paywall",
		"/entities/": "/entities",
		" /meta ":    "/meta",
		"//api/v1//": "/api/v1",
	} {
		assert.Equal(t, want, MustPrefix(in), in)
	}
	for _, in := range []string{"", "/", " // "} {
		assert.PanicsWithValue(t, "root path is required", func() { MustPrefix(in) }, in)
	}
}

func TestIfEmpty(t *testing.T) {
	def := []string{"GET"}
	assert.Equal(t, def, IfEmpty(nil, def))
	assert.Equal(t, []string{"POST"}, IfEmpty([]string{"POST"}, def))
}
