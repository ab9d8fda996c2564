package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePair(t *testing.T) {
	testCases := map[string]struct {
		in      string
		want    Pair
		wantErr bool
	}{
		"ok":          {in: "BTC/USDT", want: Pair{Base: "BTC", Quote: "USDT"}},
		"spaces":      {in: " PCX / BTC ", want: Pair{Base: "PCX", Quote: "BTC"}},
		"no quote":    {in: "BTC", wantErr: true},
		"empty base":  {in: "/USDT", wantErr: true},
		"too many":    {in: "A/B/C", wantErr: true},
		"same tokens": {in: "BTC/BTC", wantErr: true},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			got, err := ParsePair(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPairAsMapKey(t *testing.T) {
	in := map[Pair]uint32{{Base: "BTC", Quote: "USDT"}: 2}
	bz, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"BTC/USDT":2}`, string(bz))

	var out map[Pair]uint32
	require.NoError(t, json.Unmarshal(bz, &out))
	assert.Equal(t, in, out)
}

func TestSide(t *testing.T) {
	assert.Equal(t, Sell, Buy.Opposite())
	assert.Equal(t, Buy, Sell.Opposite())

	s, err := ParseSide("SELL")
	require.NoError(t, err)
	assert.Equal(t, Sell, s)

	_, err = ParseSide("hold")
	assert.Error(t, err)

	bz, err := json.Marshal(struct {
		Side Side `json:"side"`
	}{Buy})
	require.NoError(t, err)
	assert.JSONEq(t, `{"side":"buy"}`, string(bz))

	_, err = Side(7).MarshalText()
	assert.Error(t, err)
}
