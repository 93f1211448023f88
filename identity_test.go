package jointbank

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imgyf/web3-joint-bank-account/errors"
)

func TestIdentityValidate(t *testing.T) {
	cases := map[string]struct {
		identity Identity
		wantErr  *errors.Error
	}{
		"valid": {
			identity: Identity("some-party"),
		},
		"single byte": {
			identity: Identity{1},
		},
		"nil": {
			identity: nil,
			wantErr:  errors.ErrEmpty,
		},
		"empty": {
			identity: Identity{},
			wantErr:  errors.ErrEmpty,
		},
		"too long": {
			identity: make(Identity, 65),
			wantErr:  errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.identity.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else if !tc.wantErr.Is(err) {
				t.Fatalf("want %q, got %+v", tc.wantErr, err)
			}
		})
	}
}

func TestIdentityEquals(t *testing.T) {
	a := Identity("alice")
	assert.True(t, a.Equals(Identity("alice")))
	assert.False(t, a.Equals(Identity("bob")))
	assert.False(t, a.Equals(nil))
	assert.True(t, Identity(nil).Equals(nil))
}

func TestIdentityClone(t *testing.T) {
	a := Identity("alice")
	b := a.Clone()
	require.True(t, a.Equals(b))

	b[0] = 'x'
	assert.True(t, a.Equals(Identity("alice")))

	assert.Nil(t, Identity(nil).Clone())
}

func TestIdentityJSON(t *testing.T) {
	a := Identity{0xde, 0xad, 0xbe, 0xef}

	raw, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"deadbeef"`, string(raw))

	var got Identity
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, a.Equals(got))
}

func TestIdentityJSONMalformed(t *testing.T) {
	var got Identity
	err := json.Unmarshal([]byte(`"not-hex!"`), &got)
	if !errors.ErrInput.Is(err) {
		t.Fatalf("want an input error, got %+v", err)
	}
}

func TestIdentityString(t *testing.T) {
	assert.Equal(t, "DEADBEEF", Identity{0xde, 0xad, 0xbe, 0xef}.String())
	assert.Equal(t, "(empty)", Identity(nil).String())
}
