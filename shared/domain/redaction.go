package domain

import "time"

// PublicThread is what read paths return: no moderation fields.
type PublicThread struct {
	Id        ThreadId      `json:"_id"`
	Board     BoardName     `json:"board"`
	Text      PostText      `json:"text"`
	CreatedOn time.Time     `json:"created_on"`
	BumpedOn  time.Time     `json:"bumped_on"`
	Replies   []PublicReply `json:"replies"`
}

type PublicReply struct {
	Id        ReplyId   `json:"_id"`
	Text      PostText  `json:"text"`
	CreatedOn time.Time `json:"created_on"`
}

// RedactThread projects t and every reply it carries.
func RedactThread(t Thread) PublicThread {
	replies := make([]PublicReply, len(t.Replies))
	for i, r := range t.Replies {
		replies[i] = RedactReply(r)
	}
	return PublicThread{
		Id:        t.Id,
		Board:     t.Board,
		Text:      t.Text,
		CreatedOn: t.CreatedOn,
		BumpedOn:  t.BumpedOn,
		Replies:   replies,
	}
}

func RedactReply(r Reply) PublicReply {
	return PublicReply{
		Id:        r.Id,
		Text:      r.Text,
		CreatedOn: r.CreatedOn,
	}
}
