package digest

import (
	"testing"

	"writer_digest_bot/internal/domain/chat"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	cases := map[int]string{
		0:   "快晴",
		2:   "晴れ",
		3:   "くもり",
		45:  "霧",
		63:  "雨",
		75:  "雪",
		81:  "にわか雨",
		95:  "雷雨",
		123: "不明",
	}
	for code, want := range cases {
		assert.Equal(t, want, Describe(code), "code %d", code)
	}
}

func TestRunResultLookup(t *testing.T) {
	run := &Run{Results: []Result{Success(RoleGreeting, chat.Text("hi")), Failure(RoleWeather, assert.AnError)}}

	res, ok := run.Result(RoleWeather)
	assert.True(t, ok)
	assert.True(t, res.Failed())

	_, ok = run.Result(RoleNews)
	assert.False(t, ok)
}
