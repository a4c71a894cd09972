package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "COVERT"

// LoadFile fills out, a pointer to a struct with mapstructure tags, from an
// optional YAML file and from COVERT_<KEY> environment variables. Fields
// found in neither keep the value they had.
func LoadFile(path string, out interface{}) error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	keys, err := tagKeys(out)
	if err != nil {
		return err
	}
	// Unmarshal only sees environment keys viper knows about
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return fmt.Errorf("config: bind %s: %w", k, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("config: decode: %w", err)
	}
	return nil
}

func tagKeys(out interface{}) ([]string, error) {
	p := reflect.ValueOf(out)
	if p.Kind() != reflect.Ptr || p.Elem().Kind() != reflect.Struct {
		return nil, errors.New("Config must be a pointer to a struct")
	}
	var keys []string
	t := p.Elem().Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("mapstructure"), ",")[0]
		if tag != "" && tag != "-" {
			keys = append(keys, tag)
		}
	}
	return keys, nil
}
