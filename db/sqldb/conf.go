package sqldb

import (
	"fmt"
	"net/url"
	"strings"
)

// Conf - connection settings, loaded fresh for every connection request
type Conf struct {
	User string `json:"id" yaml:"id"`
	PW   string `json:"pw" yaml:"pw"`                         // plain or `enc:<token>`
	URL  string `json:"url" yaml:"url"`                       // jdbc:oracle:thin:@host:1521:XE, postgres://..., etc
	Type string `json:"type,omitempty" yaml:"type,omitempty"` // oracle, mysql, pgsql, sqlite. Derived from URL if empty
}

// Validate checks presence of the required keys only
func (c *Conf) Validate() error {
	var missing []string
	if strings.TrimSpace(c.User) == "" {
		missing = append(missing, KeyUser)
	}
	if strings.TrimSpace(c.PW) == "" {
		missing = append(missing, KeyPW)
	}
	if strings.TrimSpace(c.URL) == "" {
		missing = append(missing, KeyURL)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Conf) String() string {
	return fmt.Sprintf("Conf{id=%s url=%s pw=***}", c.User, redactURL(c.URL))
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
