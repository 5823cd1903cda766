package config

import (
	"net"
	"net/url"
	"strconv"
)

// DSN returns a pgx-compatible postgres:// URL. Credentials are escaped so
// passwords may contain reserved characters.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}

	q := url.Values{}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()

	return u.String()
}
