package telegram

// ContentKind — вид содержимого входящего сообщения.
type ContentKind string

const (
	KindText      ContentKind = "text"
	KindPhoto     ContentKind = "photo"
	KindDocument  ContentKind = "document"
	KindVideo     ContentKind = "video"
	KindAudio     ContentKind = "audio"
	KindVoice     ContentKind = "voice"
	KindAnimation ContentKind = "animation"
	KindSticker   ContentKind = "sticker"
	KindVideoNote ContentKind = "video_note"
	KindContact   ContentKind = "contact"
	KindLocation  ContentKind = "location"
	KindUnknown   ContentKind = "unknown"
)

type User struct {
	ID       int64
	Username string
	IsBot    bool
}

type Contact struct {
	PhoneNumber string
	FirstName   string
	LastName    string
}

type Location struct {
	Latitude  float64
	Longitude float64
}

type Message struct {
	MessageID int
	ChatID    int64
	ThreadID  *int // message_thread_id внутри форума
	From      *User
	ReplyTo   *Message

	Kind    ContentKind
	Text    string
	Caption string

	// FileID — идентификатор вложения (для фото берётся самый крупный размер)
	FileID   string
	Contact  *Contact
	Location *Location
}

func (m *Message) HasText() bool { return m != nil && m.Kind == KindText && m.Text != "" }

// IsMedia — всё, что можно переслать типизированной отправкой, кроме текста.
func (m *Message) IsMedia() bool {
	if m == nil {
		return false
	}
	switch m.Kind {
	case KindPhoto, KindDocument, KindVideo, KindAudio, KindVoice,
		KindAnimation, KindSticker, KindVideoNote, KindContact, KindLocation:
		return true
	}
	return false
}

// Body возвращает текст сообщения, а для медиа — подпись.
func (m *Message) Body() string {
	if m == nil {
		return ""
	}
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

type Callback struct {
	ID      string
	From    *User
	Message *Message
	Data    string
}

type Update struct {
	UpdateID      int64
	Message       *Message
	EditedMessage *Message
	Callback      *Callback
}

// MessageRef идентифицирует отправленное сообщение.
type MessageRef struct {
	ChatID    int64
	MessageID int
}
