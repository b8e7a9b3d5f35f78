package client

import (
	"errors"
	"net/url"
	"strings"
)

// Endpoint addresses one player seat in one game on a server.
type Endpoint struct {
	Host     string
	Username string
	Game     string
	Password string
	Token    string
	Secure   bool
}

func (e Endpoint) Validate() error {
	var missing []string
	if e.Host == "" {
		missing = append(missing, "host")
	}
	if e.Username == "" {
		missing = append(missing, "username")
	}
	if e.Game == "" {
		missing = append(missing, "game name")
	}
	if len(missing) > 0 {
		return errors.New("missing " + strings.Join(missing, ", "))
	}
	return nil
}

// URL is ws://<host>/socket/<username>/<game>[/<password>][?token=...].
func (e Endpoint) URL() string {
	return e.build(true)
}

// String is the URL without password or token, safe to log.
func (e Endpoint) String() string {
	return e.build(false)
}

func (e Endpoint) build(secrets bool) string {
	scheme := "ws"
	if e.Secure {
		scheme = "wss"
	}
	path := "/socket/" + url.PathEscape(e.Username) + "/" + url.PathEscape(e.Game)
	if secrets && e.Password != "" {
		path += "/" + url.PathEscape(e.Password)
	}
	u := scheme + "://" + e.Host + path
	if secrets && e.Token != "" {
		u += "?" + url.Values{"token": {e.Token}}.Encode()
	}
	return u
}
