package session

import (
	"time"

	"github.com/gorilla/securecookie"
)

// CookieCodec signs the session id carried in the browser cookie so a
// client cannot guess or forge another user's id.
type CookieCodec struct {
	sc *securecookie.SecureCookie
}

func NewCookieCodec(hashKey []byte, maxAge time.Duration) *CookieCodec {
	sc := securecookie.New(hashKey, nil)
	sc.MaxAge(int(maxAge / time.Second))
	return &CookieCodec{sc: sc}
}

// RandomKey 没配置 SESSION_SECRET 时用，重启后旧 cookie 全部失效
func RandomKey() []byte { return securecookie.GenerateRandomKey(32) }

func (c *CookieCodec) Encode(name, sessionID string) (string, error) {
	return c.sc.Encode(name, sessionID)
}

func (c *CookieCodec) Decode(name, value string) (string, error) {
	var sid string
	if err := c.sc.Decode(name, value, &sid); err != nil {
		return "", err
	}
	return sid, nil
}
