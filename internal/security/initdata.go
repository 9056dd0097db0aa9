package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
)

var (
	ErrInitDataEmpty   = errors.New("init data is empty")
	ErrInitDataNoHash  = errors.New("init data has no hash")
	ErrInitDataBadSign = errors.New("init data signature mismatch")
)

// InitDataUser — поле user из initData мини-приложения.
type InitDataUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// InitDataValidator проверяет подпись Telegram WebApp initData по схеме
// HMAC-SHA256 с ключом, производным от токена бота.
type InitDataValidator struct {
	secretKey     []byte
	allowUnsigned bool
}

func NewInitDataValidator(botToken string, allowUnsigned bool) *InitDataValidator {
	mac := hmac.New(sha256.New, []byte("WebAppData"))
	mac.Write([]byte(botToken))
	return &InitDataValidator{
		secretKey:     mac.Sum(nil),
		allowUnsigned: allowUnsigned,
	}
}

// Validate проверяет подпись и возвращает разобранного пользователя.
// При allowUnsigned подпись не проверяется (режим локальной отладки).
func (v *InitDataValidator) Validate(initData string) (*InitDataUser, error) {
	if strings.TrimSpace(initData) == "" {
		return nil, ErrInitDataEmpty
	}
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, err
	}

	if !v.allowUnsigned {
		hash := values.Get("hash")
		if hash == "" {
			return nil, ErrInitDataNoHash
		}
		if !v.checkSignature(values, hash) {
			return nil, ErrInitDataBadSign
		}
	}

	userJSON := values.Get("user")
	if userJSON == "" {
		return nil, errors.New("init data has no user")
	}
	var user InitDataUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// checkSignature собирает data-check-string: пары key=value без hash,
// отсортированные по ключу и склеенные через \n.
func (v *InitDataValidator) checkSignature(values url.Values, hash string) bool {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}

	mac := hmac.New(sha256.New, v.secretKey)
	mac.Write([]byte(strings.Join(pairs, "\n")))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(hash)))
}
