package cookie

import (
	"net/http"
	"strings"
	"time"
)

const RefreshTokenName = "refreshToken"

type Env string

const (
	Development Env = "development"
	Production  Env = "production"
)

// ParseEnv maps a deployment mode string to an Env. Anything that is not
// "production" is treated as development.
func ParseEnv(s string) Env {
	if strings.EqualFold(strings.TrimSpace(s), string(Production)) {
		return Production
	}
	return Development
}

// Policy holds every attribute of the refresh cookie except its value. Set and
// Clear both build from it, so a clearing cookie always matches the one it
// replaces.
type Policy struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
	now      func() time.Time
}

func PolicyFor(env Env, maxAge time.Duration) Policy {
	p := Policy{
		Name:     RefreshTokenName,
		Path:     "/",
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
	if env == Production {
		p.Secure = true
		p.SameSite = http.SameSiteNoneMode
	}
	return p
}

func (p Policy) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

func (p Policy) base() *http.Cookie {
	return &http.Cookie{
		Name:     p.Name,
		Path:     p.Path,
		Domain:   p.Domain,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	}
}

func (p Policy) Set(value string) *http.Cookie {
	c := p.base()
	c.Value = value
	c.MaxAge = int(p.MaxAge / time.Second)
	c.Expires = p.clock().Add(p.MaxAge)
	return c
}

func (p Policy) Clear() *http.Cookie {
	c := p.base()
	c.Value = ""
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}
