package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStats(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Stats
	}{
		{"community counters", `{'community': {'in_wantlist': 12, 'in_collection': 34}}`, Stats{InWantlist: 12, InCollection: 34}},
		{"double quotes", `{"community": {"in_wantlist": 1, "in_collection": 2}}`, Stats{InWantlist: 1, InCollection: 2}},
		{"extra keys and nesting", `{'community': {'in_wantlist': 7, 'in_collection': 8, 'rating': {'average': 4.5, 'count': 2}, 'contributors': [{'username': 'x'}]}, 'user': {'in_collection': False}}`, Stats{InWantlist: 7, InCollection: 8}},
		{"missing community", `{'user': {'in_wantlist': 3}}`, Stats{}},
		{"missing one counter", `{'community': {'in_wantlist': 45}}`, Stats{InWantlist: 45}},
		{"integral float", `{'community': {'in_wantlist': 3.0, 'in_collection': 1e2}}`, Stats{InWantlist: 3, InCollection: 100}},
		{"whitespace and trailing comma", "  {'community': {'in_wantlist': 1,\n 'in_collection': 2,},}\n", Stats{InWantlist: 1, InCollection: 2}},
		{"escaped quote in key", `{'it\'s': None, 'community': {'in_collection': 9}}`, Stats{InCollection: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStats(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStats_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not a dict", "not a dict"},
		{"empty", ""},
		{"nan from pandas", "nan"},
		{"list at top", "[1, 2]"},
		{"community not a mapping", "{'community': 5}"},
		{"community None", "{'community': None}"},
		{"negative count", "{'community': {'in_wantlist': -1, 'in_collection': 3}}"},
		{"fractional count", "{'community': {'in_wantlist': 1.5}}"},
		{"string count", "{'community': {'in_wantlist': '12'}}"},
		{"bool count", "{'community': {'in_collection': True}}"},
		{"unterminated", "{'community': {'in_wantlist': 12"},
		{"trailing garbage", "{'community': {}} extra"},
		{"code is not evaluated", "__import__('os').system('true')"},
		{"call inside", "{'community': {'in_wantlist': len('abc')}}"},
		{"unhashable key", "{[1]: 2}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStats(tt.raw)
			assert.ErrorIs(t, err, ErrMalformedStats)
			assert.Equal(t, Stats{}, got)
			assert.Equal(t, Stats{}, StatsOrZero(tt.raw))
		})
	}
}

func TestParseLiteral_DeepNesting(t *testing.T) {
	raw := ""
	for i := 0; i < maxLiteralDepth+1; i++ {
		raw += "["
	}
	_, err := parseLiteral(raw)
	assert.Error(t, err)
}

func TestParseLiteral_Values(t *testing.T) {
	v, err := parseLiteral(`{'a': (1, -2.5, 'x\ny', "é"), 'b': [True, False, None]}`)
	require.NoError(t, err)

	m := v.(map[any]any)
	assert.Equal(t, []any{int64(1), -2.5, "x\ny", "é"}, m["a"])
	assert.Equal(t, []any{true, false, nil}, m["b"])
}
