package module

import (
	"testing"

	phttp "paygate/internal/platform/net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Pricer interface{ Price() uint64 }

type fixed uint64

func (f fixed) Price() uint64 { return uint64(f) }

type fake struct{ ports any }

func (fake) Name() string             { return "paywall" }
func (fake) MountRoutes(phttp.Router) {}
func (f fake) Ports() any             { return f.ports }

func TestPortsOf(t *testing.T) {
	type bundle struct {
		Label string
		Gate  Pricer
	}
	type hidden struct{ gate Pricer }

	cases := []struct {
		name  string
		ports any
		want  uint64
		ok    bool
	}{
		{"nil", nil, 0, false},
		{"direct", Pricer(fixed(5)), 5, true},
		{"struct field", bundle{Label: "x", Gate: fixed(7)}, 7, true},
		{"pointer to struct", &bundle{Gate: fixed(9)}, 9, true},
		{"nil pointer", (*bundle)(nil), 0, false},
		{"unexported field", hidden{gate: fixed(1)}, 0, false},
		{"scalar", 42, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PortsOf[Pricer](fake{ports: tc.ports})
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.want, got.Price())
			}
		})
	}
}

func TestMustPortsOf(t *testing.T) {
	assert.EqualValues(t, 3, MustPortsOf[Pricer](fake{ports: fixed(3)}).Price())
	assert.PanicsWithValue(t, "module paywall: no module.Pricer in ports", func() {
		MustPortsOf[Pricer](fake{})
	})
}
