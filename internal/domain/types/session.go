package types

// ChatSession is the client-side view of one conversation. It is derived from
// the message store and never persisted authoritatively.
type ChatSession struct {
	ChatID       ChatID     `json:"chatId"`
	ParticipantA UserID     `json:"participantA"`
	ParticipantB UserID     `json:"participantB"`
	Messages     []Envelope `json:"messages"`
	UnreadCount  int        `json:"unreadCount"`
}
