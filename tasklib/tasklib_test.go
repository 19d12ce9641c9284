package tasklib

import (
	"testing"

	"github.com/dszqbsm/musiccrawler/spider"
	"github.com/dszqbsm/musiccrawler/tasklib/doubanjs"
	"github.com/dszqbsm/musiccrawler/tasklib/netease"
	"github.com/dszqbsm/musiccrawler/weapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	_, ok := spider.TaskStore.Get(doubanjs.TaskName)
	assert.True(t, ok)

	signer, err := weapi.NewSigner()
	require.NoError(t, err)
	Register(signer, netease.DefaultConfig)

	task, ok := spider.TaskStore.Get(netease.TaskName)
	require.True(t, ok)
	assert.Contains(t, task.Rule.Trunk, netease.RuleSongComments)
	assert.Equal(t, []string{"song_id", "total"}, spider.TaskStore.GetFields(netease.TaskName, netease.RuleSongComments))
}
