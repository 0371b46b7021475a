package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func threadWithReplies(n int) Thread {
	th := NewThread(ThreadCreationData{Board: "b", Text: "op", DeletePassword: "pw"}, now)
	for i := 0; i < n; i++ {
		th.Replies = append(th.Replies, NewReply(ReplyCreationData{ThreadId: th.Id, Text: fmt.Sprintf("r%d", i)}, now.Add(time.Duration(i+1)*time.Second)))
	}
	return th
}

func TestNewThread(t *testing.T) {
	th := NewThread(ThreadCreationData{Board: "tech", Text: "hello", DeletePassword: "pw"}, now)

	assert.NotEmpty(t, th.Id)
	assert.Equal(t, "tech", th.Board)
	assert.Equal(t, "hello", th.Text)
	assert.Equal(t, "pw", th.DeletePassword)
	assert.Equal(t, now, th.CreatedOn)
	assert.Equal(t, now, th.BumpedOn)
	assert.False(t, th.Reported)
	assert.NotNil(t, th.Replies)
	assert.Empty(t, th.Replies)

	other := NewThread(ThreadCreationData{Board: "tech"}, now)
	assert.NotEqual(t, th.Id, other.Id)
}

func TestNewReply(t *testing.T) {
	r := NewReply(ReplyCreationData{ThreadId: "t", Text: "hi", DeletePassword: "pw"}, now)

	assert.NotEmpty(t, r.Id)
	assert.Equal(t, "hi", r.Text)
	assert.Equal(t, "pw", r.DeletePassword)
	assert.Equal(t, now, r.CreatedOn)
	assert.False(t, r.Reported)
}

func TestLastReplies(t *testing.T) {
	th := threadWithReplies(5)

	tests := []struct {
		n     int
		first string
		count int
	}{
		{n: 3, first: "r2", count: 3},
		{n: 5, first: "r0", count: 5},
		{n: 10, first: "r0", count: 5},
		{n: -1, first: "r0", count: 5},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			last := th.LastReplies(tt.n)
			require.Len(t, last, tt.count)
			assert.Equal(t, tt.first, last[0].Text)
			assert.Equal(t, "r4", last[len(last)-1].Text)
		})
	}

	assert.Empty(t, th.LastReplies(0))
	empty := threadWithReplies(0)
	assert.Empty(t, empty.LastReplies(3))
}

func TestFindReply(t *testing.T) {
	th := threadWithReplies(3)

	assert.Equal(t, 1, th.FindReply(th.Replies[1].Id))
	assert.Equal(t, -1, th.FindReply(NewId()))
	assert.Equal(t, -1, th.FindReply(""))
}

func TestClone(t *testing.T) {
	th := threadWithReplies(2)
	c := th.Clone()
	c.Replies[0].Text = "changed"
	c.Replies = append(c.Replies, Reply{Id: "extra"})

	assert.Equal(t, "r0", th.Replies[0].Text)
	assert.Len(t, th.Replies, 2)
}

func TestStringers(t *testing.T) {
	th := threadWithReplies(1)
	s := th.String()
	assert.Contains(t, s, th.Id)
	assert.Contains(t, s, `"r0"`)
	assert.NotContains(t, s, "pw", "debug output must not leak passwords")
}
