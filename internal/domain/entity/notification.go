package entity

// Notification is a server-backed bell notification: fetched, polled,
// markable read and deletable.
type Notification struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Time    string `json:"time"`
	IsRead  bool   `json:"isRead"`
}

// Toast is an ephemeral client-generated notification. It never touches the
// backend and is removed automatically a few seconds after being added.
type Toast struct {
	ID      int64
	Message string
	Type    string
	Time    string
}
