package jointaccount

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imgyf/web3-joint-bank-account/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.AutoApproveProposer)
	assert.Equal(t, DenyVeto, cfg.DenyRule)
	assert.False(t, cfg.StrictFunding)
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]struct {
		cfg     Config
		wantErr *errors.Error
	}{
		"default": {
			cfg: DefaultConfig(),
		},
		"majority deny": {
			cfg: Config{DenyRule: DenyMajority},
		},
		"zero value": {
			cfg:     Config{},
			wantErr: errors.ErrState,
		},
		"unknown deny rule": {
			cfg:     Config{DenyRule: DenyRule(9)},
			wantErr: errors.ErrState,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else if !tc.wantErr.Is(err) {
				t.Fatalf("want %q, got %+v", tc.wantErr, err)
			}
		})
	}
}

func TestConfigSerialization(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictFunding = true

	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	var got Config
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, cfg, got)
}
