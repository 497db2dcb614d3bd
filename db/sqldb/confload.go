package sqldb

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfPath     = "GW_DB_PROPERTIES"
	DefaultConfPath = "config/db.properties"
)

// Recognized keys
const (
	KeyUser = "id"
	KeyPW   = "pw"
	KeyURL  = "url"
	KeyType = "type"
)

// ConfPath resolves the configuration file path.
// explicit (e.g. a CLI flag) > $GW_DB_PROPERTIES > DefaultConfPath
func ConfPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvConfPath); p != "" {
		return p
	}
	return DefaultConfPath
}

// LoadConf reads the file at path on every call. Nothing is cached.
// Format by extension: .json, .yaml/.yml, .env (dotenv), anything else is
// a java .properties file.
func LoadConf(path string) (*Conf, error) {
	if path == "" {
		return nil, &Error{Kind: KindConf, Err: errors.New("empty configuration path")}
	}
	var (
		conf Conf
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = unmarshalFile(path, &conf, json.Unmarshal)
	case ".yaml", ".yml":
		err = unmarshalFile(path, &conf, yaml.Unmarshal)
	case ".env":
		err = readDotenv(path, &conf)
	default:
		err = readProperties(path, &conf)
	}
	if err != nil {
		return nil, &Error{Kind: KindConf, Path: path, Err: err}
	}
	conf.User = strings.TrimSpace(conf.User)
	conf.URL = strings.TrimSpace(conf.URL)
	conf.Type = strings.ToLower(strings.TrimSpace(conf.Type))
	if err = conf.Validate(); err != nil {
		return nil, &Error{Kind: KindConf, Path: path, Err: err}
	}
	return &conf, nil
}

func unmarshalFile(path string, conf *Conf, unmarshal func([]byte, any) error) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return unmarshal(b, conf)
}

// readProperties parses java.util.Properties syntax: `=`, `:` or whitespace
// separators, `#`/`!` comment lines only, backslash escapes and continuations.
// ${...} is left as is.
func readProperties(path string, conf *Conf) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(b)
	if err != nil {
		return err
	}
	conf.User, _ = p.Get(KeyUser)
	conf.PW, _ = p.Get(KeyPW)
	conf.URL, _ = p.Get(KeyURL)
	conf.Type, _ = p.Get(KeyType)
	return nil
}

func readDotenv(path string, conf *Conf) error {
	kv, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	conf.User = kv[KeyUser]
	conf.PW = kv[KeyPW]
	conf.URL = kv[KeyURL]
	conf.Type = kv[KeyType]
	return nil
}
