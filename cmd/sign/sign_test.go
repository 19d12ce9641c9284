package sign

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/dszqbsm/musiccrawler/weapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(args ...string) (string, error) {
	cmd := NewSignCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSignCmd(t *testing.T) {
	out, err := run("--payload", `{"ids":"[186016]","br":128000}`)
	require.NoError(t, err)

	var params weapi.Params
	require.NoError(t, json.Unmarshal([]byte(out), &params))
	assert.Len(t, params.EncSecKey, 256)

	raw, err := base64.StdEncoding.DecodeString(params.Params)
	require.NoError(t, err)
	assert.Zero(t, len(raw)%16)
}

func TestSignCmdErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "bad payload", args: []string{"--payload", "{"}, want: weapi.ErrEncoding},
		{name: "bad modulus", args: []string{"--modulus", "xyz"}, want: weapi.ErrConfig},
		{name: "bad nonce", args: []string{"--nonce", "short"}, want: weapi.ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
