package domain

type (
	BoardName = string
	ThreadId  = string
	ReplyId   = string
	Password  = string
	PostText  = string
)

// DeletedReplyText replaces the text of a reply deleted by its author.
const DeletedReplyText PostText = "[deleted]"
