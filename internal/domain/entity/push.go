package entity

// PushMessage is a transport-agnostic notification payload.
type PushMessage struct {
	Title    string
	Body     string
	ImageURL string
	Data     map[string]string
}
