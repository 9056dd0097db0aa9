package security_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/vladbogun1/tg-shop-miniapp/internal/security"
)

const testBotToken = "12345:TEST-TOKEN"

// signInitData подписывает пары так же, как это делает Telegram:
// HMAC("WebAppData", token) даёт секрет, им подписывается отсортированная
// data-check-string.
func signInitData(t *testing.T, botToken string, pairs map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+pairs[k])
	}

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(botToken))
	secret := secretMac.Sum(nil)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strings.Join(lines, "\n")))
	hash := hex.EncodeToString(mac.Sum(nil))

	values := url.Values{}
	for k, v := range pairs {
		values.Set(k, v)
	}
	values.Set("hash", hash)
	return values.Encode()
}

func TestValidate_SignedInitData(t *testing.T) {
	initData := signInitData(t, testBotToken, map[string]string{
		"auth_date": "1756500000",
		"query_id":  "AAF3test",
		"user":      `{"id":4242,"username":"buyer","first_name":"Иван","last_name":"Петров"}`,
	})

	v := security.NewInitDataValidator(testBotToken, false)
	user, err := v.Validate(initData)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if user.ID != 4242 || user.Username != "buyer" || user.FirstName != "Иван" {
		t.Fatalf("пользователь разобран с искажением: %+v", user)
	}
}

func TestValidate_UppercaseHashAccepted(t *testing.T) {
	initData := signInitData(t, testBotToken, map[string]string{
		"auth_date": "1756500000",
		"user":      `{"id":1}`,
	})
	values, _ := url.ParseQuery(initData)
	values.Set("hash", strings.ToUpper(values.Get("hash")))

	v := security.NewInitDataValidator(testBotToken, false)
	if _, err := v.Validate(values.Encode()); err != nil {
		t.Fatalf("hash в верхнем регистре должен приниматься: %v", err)
	}
}

func TestValidate_TamperedPayloadRejected(t *testing.T) {
	initData := signInitData(t, testBotToken, map[string]string{
		"auth_date": "1756500000",
		"user":      `{"id":4242,"username":"buyer"}`,
	})
	tampered := strings.Replace(initData, "4242", "4243", 1)

	v := security.NewInitDataValidator(testBotToken, false)
	if _, err := v.Validate(tampered); !errors.Is(err, security.ErrInitDataBadSign) {
		t.Fatalf("ожидали ErrInitDataBadSign, получили %v", err)
	}
}

func TestValidate_WrongBotTokenRejected(t *testing.T) {
	initData := signInitData(t, "999:OTHER-TOKEN", map[string]string{
		"auth_date": "1756500000",
		"user":      `{"id":1}`,
	})

	v := security.NewInitDataValidator(testBotToken, false)
	if _, err := v.Validate(initData); !errors.Is(err, security.ErrInitDataBadSign) {
		t.Fatalf("ожидали ErrInitDataBadSign, получили %v", err)
	}
}

func TestValidate_MissingHash(t *testing.T) {
	v := security.NewInitDataValidator(testBotToken, false)
	if _, err := v.Validate("user=%7B%22id%22%3A1%7D"); !errors.Is(err, security.ErrInitDataNoHash) {
		t.Fatalf("ожидали ErrInitDataNoHash, получили %v", err)
	}
}

func TestValidate_Empty(t *testing.T) {
	v := security.NewInitDataValidator(testBotToken, false)
	if _, err := v.Validate("   "); !errors.Is(err, security.ErrInitDataEmpty) {
		t.Fatalf("ожидали ErrInitDataEmpty, получили %v", err)
	}
}

func TestValidate_AllowUnsignedSkipsCheck(t *testing.T) {
	v := security.NewInitDataValidator(testBotToken, true)
	user, err := v.Validate("user=%7B%22id%22%3A7%2C%22username%22%3A%22dev%22%7D")
	if err != nil {
		t.Fatalf("unsigned режим не должен требовать подпись: %v", err)
	}
	if user.ID != 7 || user.Username != "dev" {
		t.Fatalf("пользователь разобран с искажением: %+v", user)
	}
}

func TestValidate_NoUserField(t *testing.T) {
	initData := signInitData(t, testBotToken, map[string]string{
		"auth_date": "1756500000",
	})
	v := security.NewInitDataValidator(testBotToken, false)
	if _, err := v.Validate(initData); err == nil {
		t.Fatal("initData без user должна отклоняться")
	}
}
