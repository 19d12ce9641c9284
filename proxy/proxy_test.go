package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobinProxySwitcher(t *testing.T) {
	p, err := RoundRobinProxySwitcher("http://127.0.0.1:8888", "http://127.0.0.1:8889")
	require.NoError(t, err)

	want := []string{"127.0.0.1:8888", "127.0.0.1:8889", "127.0.0.1:8888"}
	for _, w := range want {
		u, err := p(nil)
		require.NoError(t, err)
		assert.Equal(t, w, u.Host)
	}
}

func TestRoundRobinProxySwitcherErrors(t *testing.T) {
	_, err := RoundRobinProxySwitcher()
	assert.ErrorIs(t, err, ErrEmptyProxy)

	_, err = RoundRobinProxySwitcher("http://[::1")
	assert.Error(t, err)

	_, err = (&roundRobinSwitcher{}).GetProxy(nil)
	assert.ErrorIs(t, err, ErrEmptyProxy)
}
