package httpmsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderPreservesDuplicatesAndOrder(t *testing.T) {
	h := NewHeader()
	h.Add("Set-Cookie", "a=1")
	h.Add("Set-Cookie", "b=2")
	h.Add("X-Foo", "bar")

	assert.Equal(t, []string{"a=1", "b=2"}, h.Values("Set-Cookie"))
	assert.Equal(t, 3, h.Len())

	var names []string
	h.Each(func(name, value string) { names = append(names, name) })
	assert.Equal(t, []string{"Set-Cookie", "Set-Cookie", "X-Foo"}, names)
}

func TestHeaderGetIsCaseInsensitive(t *testing.T) {
	h := NewHeader()
	h.Add("Content-Type", "text/plain")

	v, ok := h.Get("content-type")
	assert.True(t, ok)
	assert.Equal(t, "text/plain", v)
}

func TestHeaderSetReplacesAllAndKeepsFirstCasing(t *testing.T) {
	h := NewHeader()
	h.Add("X-Foo", "one")
	h.Add("x-foo", "two")
	h.Add("X-Bar", "keep")

	h.Set("X-FOO", "final")

	assert.Equal(t, []string{"final"}, h.Values("X-Foo"))
	assert.Equal(t, 2, h.Len())

	var names []string
	h.Each(func(name, value string) { names = append(names, name) })
	assert.Equal(t, []string{"X-Foo", "X-Bar"}, names)
}

func TestHeaderSetWithNoExistingEntryAppends(t *testing.T) {
	h := NewHeader()
	h.Set("X-New", "v")
	assert.Equal(t, []string{"v"}, h.Values("X-New"))
}

func TestHeaderHasToken(t *testing.T) {
	h := NewHeader()
	h.Add("Connection", "keep-alive, Upgrade")

	assert.True(t, h.HasToken("Connection", "upgrade"))
	assert.True(t, h.HasToken("connection", "keep-alive"))
	assert.False(t, h.HasToken("Connection", "close"))
}

func TestHeaderLastToken(t *testing.T) {
	h := NewHeader()
	h.Add("Transfer-Encoding", "gzip, chunked")

	last, ok := h.LastToken("Transfer-Encoding")
	assert.True(t, ok)
	assert.Equal(t, "chunked", last)
}

func TestHeaderDel(t *testing.T) {
	h := NewHeader()
	h.Add("X-Foo", "1")
	h.Add("X-Bar", "2")
	h.Del("x-foo")

	assert.False(t, h.Has("X-Foo"))
	assert.Equal(t, 1, h.Len())
}
