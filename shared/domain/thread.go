package domain

import (
	"time"
)

// to iterate thru layers: handler -> service -> storage
type ThreadCreationData struct {
	Board          BoardName
	Text           PostText
	DeletePassword Password
}

// Thread is the stored document. Create-time responses serialize it as is.
type Thread struct {
	Id             ThreadId  `json:"_id"`
	Board          BoardName `json:"board"`
	Text           PostText  `json:"text"`
	CreatedOn      time.Time `json:"created_on"`
	BumpedOn       time.Time `json:"bumped_on"`
	Reported       bool      `json:"reported"`
	DeletePassword Password  `json:"delete_password"`
	Replies        []Reply   `json:"replies"`
}

func NewThread(data ThreadCreationData, now time.Time) Thread {
	return Thread{
		Id:             NewId(),
		Board:          data.Board,
		Text:           data.Text,
		CreatedOn:      now,
		BumpedOn:       now,
		DeletePassword: data.DeletePassword,
		Replies:        []Reply{},
	}
}

// FindReply returns the index of the reply with the given id, or -1.
func (t *Thread) FindReply(id ReplyId) int {
	for i := range t.Replies {
		if t.Replies[i].Id == id {
			return i
		}
	}
	return -1
}

// LastReplies returns the n most recent replies in insertion order.
// A negative n means all of them.
func (t *Thread) LastReplies(n int) []Reply {
	if n < 0 || len(t.Replies) <= n {
		return t.Replies
	}
	return t.Replies[len(t.Replies)-n:]
}

// Clone returns a deep copy; the replies slice is never shared.
func (t Thread) Clone() Thread {
	replies := make([]Reply, len(t.Replies))
	copy(replies, t.Replies)
	t.Replies = replies
	return t
}
