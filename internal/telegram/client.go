package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const apiBase = "https://api.telegram.org"

// Client — клиент Bot API поверх net/http: long-poll входящих обновлений
// и типизированные исходящие команды.
type Client struct {
	token string
	base  string
	http  *http.Client
	log   *zap.Logger
}

func NewClient(token string, log *zap.Logger) *Client {
	return &Client{
		token: token,
		base:  apiBase,
		http:  &http.Client{Timeout: 40 * time.Second},
		log:   log,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (c *Client) call(ctx context.Context, method string, params map[string]any, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.base, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return err
	}
	if !ar.OK {
		return fmt.Errorf("telegram: %s: %s", method, ar.Description)
	}
	if out != nil {
		return json.Unmarshal(ar.Result, out)
	}
	return nil
}

// --- wire-структуры Bot API ---

type wireUser struct {
	ID       int64  `json:"id"`
	IsBot    bool   `json:"is_bot"`
	Username string `json:"username"`
}

type wireFile struct {
	FileID string `json:"file_id"`
}

type wireContact struct {
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

type wireLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type wireChat struct {
	ID int64 `json:"id"`
}

type wireMessage struct {
	MessageID int          `json:"message_id"`
	Chat      wireChat     `json:"chat"`
	From      *wireUser    `json:"from"`
	ThreadID  *int         `json:"message_thread_id"`
	ReplyTo   *wireMessage `json:"reply_to_message"`

	Text      string        `json:"text"`
	Caption   string        `json:"caption"`
	Photo     []wireFile    `json:"photo"`
	Document  *wireFile     `json:"document"`
	Video     *wireFile     `json:"video"`
	Audio     *wireFile     `json:"audio"`
	Voice     *wireFile     `json:"voice"`
	Animation *wireFile     `json:"animation"`
	Sticker   *wireFile     `json:"sticker"`
	VideoNote *wireFile     `json:"video_note"`
	Contact   *wireContact  `json:"contact"`
	Location  *wireLocation `json:"location"`
}

type wireCallback struct {
	ID      string       `json:"id"`
	From    *wireUser    `json:"from"`
	Message *wireMessage `json:"message"`
	Data    string       `json:"data"`
}

type wireUpdate struct {
	UpdateID      int64         `json:"update_id"`
	Message       *wireMessage  `json:"message"`
	EditedMessage *wireMessage  `json:"edited_message"`
	Callback      *wireCallback `json:"callback_query"`
}

type wireForumTopic struct {
	MessageThreadID int `json:"message_thread_id"`
}

func convertUser(u *wireUser) *User {
	if u == nil {
		return nil
	}
	return &User{ID: u.ID, Username: u.Username, IsBot: u.IsBot}
}

func convertMessage(m *wireMessage) *Message {
	if m == nil {
		return nil
	}
	out := &Message{
		MessageID: m.MessageID,
		ChatID:    m.Chat.ID,
		ThreadID:  m.ThreadID,
		From:      convertUser(m.From),
		ReplyTo:   convertMessage(m.ReplyTo),
		Text:      m.Text,
		Caption:   m.Caption,
	}

	switch {
	case m.Text != "":
		out.Kind = KindText
	case len(m.Photo) > 0:
		out.Kind = KindPhoto
		out.FileID = m.Photo[len(m.Photo)-1].FileID // самый крупный размер
	case m.Document != nil:
		out.Kind = KindDocument
		out.FileID = m.Document.FileID
	case m.Video != nil:
		out.Kind = KindVideo
		out.FileID = m.Video.FileID
	case m.Audio != nil:
		out.Kind = KindAudio
		out.FileID = m.Audio.FileID
	case m.Voice != nil:
		out.Kind = KindVoice
		out.FileID = m.Voice.FileID
	case m.Animation != nil:
		out.Kind = KindAnimation
		out.FileID = m.Animation.FileID
	case m.Sticker != nil:
		out.Kind = KindSticker
		out.FileID = m.Sticker.FileID
	case m.VideoNote != nil:
		out.Kind = KindVideoNote
		out.FileID = m.VideoNote.FileID
	case m.Contact != nil:
		out.Kind = KindContact
		out.Contact = &Contact{
			PhoneNumber: m.Contact.PhoneNumber,
			FirstName:   m.Contact.FirstName,
			LastName:    m.Contact.LastName,
		}
	case m.Location != nil:
		out.Kind = KindLocation
		out.Location = &Location{Latitude: m.Location.Latitude, Longitude: m.Location.Longitude}
	default:
		out.Kind = KindUnknown
	}
	return out
}

func convertUpdate(u wireUpdate) Update {
	out := Update{UpdateID: u.UpdateID}
	out.Message = convertMessage(u.Message)
	out.EditedMessage = convertMessage(u.EditedMessage)
	if u.Callback != nil {
		out.Callback = &Callback{
			ID:      u.Callback.ID,
			From:    convertUser(u.Callback.From),
			Message: convertMessage(u.Callback.Message),
			Data:    u.Callback.Data,
		}
	}
	return out
}

// Poll крутит getUpdates до отмены контекста. Обновления обрабатываются
// последовательно, в порядке доставки.
func (c *Client) Poll(ctx context.Context, handler func(Update)) {
	var offset int64

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var updates []wireUpdate
		err := c.call(ctx, "getUpdates", map[string]any{
			"offset":          offset,
			"timeout":         30,
			"allowed_updates": []string{"message", "edited_message", "callback_query"},
		}, &updates)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("Ошибка long-poll, повтор через паузу", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, wu := range updates {
			if wu.UpdateID >= offset {
				offset = wu.UpdateID + 1
			}
			handler(convertUpdate(wu))
		}
	}
}

// --- исходящие команды ---

func markupJSON(cmd SendMessage) any {
	if cmd.ForceReply {
		return map[string]any{"force_reply": true, "selective": true}
	}
	if cmd.ReplyMarkup != nil {
		return inlineKeyboardJSON(cmd.ReplyMarkup)
	}
	return nil
}

func inlineKeyboardJSON(kb *InlineKeyboardMarkup) any {
	rows := make([][]map[string]any, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		out := make([]map[string]any, 0, len(row))
		for _, b := range row {
			btn := map[string]any{"text": b.Text}
			switch {
			case b.CallbackData != "":
				btn["callback_data"] = b.CallbackData
			case b.WebAppURL != "":
				btn["web_app"] = map[string]any{"url": b.WebAppURL}
			case b.URL != "":
				btn["url"] = b.URL
			}
			out = append(out, btn)
		}
		rows = append(rows, out)
	}
	return map[string]any{"inline_keyboard": rows}
}

func (c *Client) SendMessage(ctx context.Context, cmd SendMessage) (*MessageRef, error) {
	params := map[string]any{
		"chat_id": cmd.ChatID,
		"text":    cmd.Text,
	}
	if cmd.ParseHTML {
		params["parse_mode"] = "HTML"
	}
	if cmd.ThreadID != nil {
		params["message_thread_id"] = *cmd.ThreadID
	}
	if cmd.ReplyToMessageID != nil {
		params["reply_to_message_id"] = *cmd.ReplyToMessageID
	}
	if m := markupJSON(cmd); m != nil {
		params["reply_markup"] = m
	}

	var sent wireMessage
	if err := c.call(ctx, "sendMessage", params, &sent); err != nil {
		return nil, err
	}
	return &MessageRef{ChatID: sent.Chat.ID, MessageID: sent.MessageID}, nil
}

// mediaMethods — таблица диспетчеризации вида вложения в метод API и имя поля.
var mediaMethods = map[ContentKind]struct {
	method string
	field  string
}{
	KindPhoto:     {"sendPhoto", "photo"},
	KindDocument:  {"sendDocument", "document"},
	KindVideo:     {"sendVideo", "video"},
	KindAudio:     {"sendAudio", "audio"},
	KindVoice:     {"sendVoice", "voice"},
	KindAnimation: {"sendAnimation", "animation"},
	KindSticker:   {"sendSticker", "sticker"},
	KindVideoNote: {"sendVideoNote", "video_note"},
}

func (c *Client) SendMedia(ctx context.Context, cmd SendMedia) (*MessageRef, error) {
	params := map[string]any{"chat_id": cmd.ChatID}
	if cmd.ThreadID != nil {
		params["message_thread_id"] = *cmd.ThreadID
	}
	if cmd.ReplyToMessageID != nil {
		params["reply_to_message_id"] = *cmd.ReplyToMessageID
	}

	var method string
	switch cmd.Kind {
	case KindContact:
		if cmd.Contact == nil {
			return nil, fmt.Errorf("telegram: contact payload missing")
		}
		method = "sendContact"
		params["phone_number"] = cmd.Contact.PhoneNumber
		params["first_name"] = cmd.Contact.FirstName
		if cmd.Contact.LastName != "" {
			params["last_name"] = cmd.Contact.LastName
		}
	case KindLocation:
		if cmd.Location == nil {
			return nil, fmt.Errorf("telegram: location payload missing")
		}
		method = "sendLocation"
		params["latitude"] = cmd.Location.Latitude
		params["longitude"] = cmd.Location.Longitude
	default:
		mm, ok := mediaMethods[cmd.Kind]
		if !ok {
			return nil, fmt.Errorf("telegram: unsupported media kind %q", cmd.Kind)
		}
		method = mm.method
		params[mm.field] = cmd.FileID
		if cmd.Caption != "" && cmd.Kind != KindSticker && cmd.Kind != KindVideoNote {
			params["caption"] = cmd.Caption
		}
	}

	var sent wireMessage
	if err := c.call(ctx, method, params, &sent); err != nil {
		return nil, err
	}
	return &MessageRef{ChatID: sent.Chat.ID, MessageID: sent.MessageID}, nil
}

func (c *Client) EditMessageText(ctx context.Context, cmd EditMessageText) error {
	params := map[string]any{
		"chat_id":    cmd.ChatID,
		"message_id": cmd.MessageID,
		"text":       cmd.Text,
	}
	if cmd.ParseHTML {
		params["parse_mode"] = "HTML"
	}
	if cmd.ReplyMarkup != nil {
		params["reply_markup"] = inlineKeyboardJSON(cmd.ReplyMarkup)
	}
	return c.call(ctx, "editMessageText", params, nil)
}

func (c *Client) EditMessageCaption(ctx context.Context, cmd EditMessageCaption) error {
	return c.call(ctx, "editMessageCaption", map[string]any{
		"chat_id":    cmd.ChatID,
		"message_id": cmd.MessageID,
		"caption":    cmd.Caption,
	}, nil)
}

func (c *Client) EditMessageReplyMarkup(ctx context.Context, cmd EditMessageReplyMarkup) error {
	params := map[string]any{
		"chat_id":    cmd.ChatID,
		"message_id": cmd.MessageID,
	}
	if cmd.ReplyMarkup != nil {
		params["reply_markup"] = inlineKeyboardJSON(cmd.ReplyMarkup)
	}
	return c.call(ctx, "editMessageReplyMarkup", params, nil)
}

func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return c.call(ctx, "deleteMessage", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}, nil)
}

func (c *Client) AnswerCallback(ctx context.Context, cmd AnswerCallback) error {
	params := map[string]any{"callback_query_id": cmd.CallbackID}
	if cmd.Text != "" {
		params["text"] = cmd.Text
	}
	if cmd.ShowAlert {
		params["show_alert"] = true
	}
	return c.call(ctx, "answerCallbackQuery", params, nil)
}

func (c *Client) CreateForumTopic(ctx context.Context, chatID int64, name string) (int, error) {
	var topic wireForumTopic
	err := c.call(ctx, "createForumTopic", map[string]any{
		"chat_id": chatID,
		"name":    name,
	}, &topic)
	if err != nil {
		return 0, err
	}
	return topic.MessageThreadID, nil
}

func (c *Client) EditForumTopic(ctx context.Context, chatID int64, threadID int, name string) error {
	return c.call(ctx, "editForumTopic", map[string]any{
		"chat_id":           chatID,
		"message_thread_id": threadID,
		"name":              name,
	}, nil)
}
