package domain

import "time"

type ReplyCreationData struct {
	ThreadId       ThreadId
	Text           PostText
	DeletePassword Password
}

type Reply struct {
	Id             ReplyId   `json:"_id"`
	Text           PostText  `json:"text"`
	CreatedOn      time.Time `json:"created_on"`
	Reported       bool      `json:"reported"`
	DeletePassword Password  `json:"delete_password"`
}

func NewReply(data ReplyCreationData, now time.Time) Reply {
	return Reply{
		Id:             NewId(),
		Text:           data.Text,
		CreatedOn:      now,
		DeletePassword: data.DeletePassword,
	}
}
