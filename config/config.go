package config

import (
	"errors"
	"os"
	"time"

	"github.com/SvenDH/go-card-client/client"
)

const (
	DefaultHost = "localhost:800"

	envPrefix = "MUNCHKIN_"
)

// Client holds everything needed to reach a game.
type Client struct {
	Host     string
	Username string
	Game     string
	Password string
	Token    string
	Secure   bool
	Journal  string
	Timeout  time.Duration
}

// Default returns defaults overridden by MUNCHKIN_* environment variables.
func Default() Client {
	c := Client{
		Host:    DefaultHost,
		Timeout: 10 * time.Second,
	}
	c.Host = env("HOST", c.Host)
	c.Username = env("USERNAME", c.Username)
	c.Game = env("GAME", c.Game)
	c.Password = env("PASSWORD", c.Password)
	c.Token = env("TOKEN", c.Token)
	c.Journal = env("JOURNAL", c.Journal)
	return c
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		return v
	}
	return fallback
}

// Endpoint builds the socket endpoint. A missing username is read from the
// token's name claim.
func (c Client) Endpoint() (client.Endpoint, error) {
	ep := client.Endpoint{
		Host:     c.Host,
		Username: c.Username,
		Game:     c.Game,
		Password: c.Password,
		Token:    c.Token,
		Secure:   c.Secure,
	}
	if ep.Username == "" && ep.Token != "" {
		name, err := client.UsernameFromToken(ep.Token)
		if err != nil {
			return client.Endpoint{}, err
		}
		ep.Username = name
	}
	if err := ep.Validate(); err != nil {
		return client.Endpoint{}, err
	}
	return ep, nil
}

func (c Client) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	return nil
}
