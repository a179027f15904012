package config

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

var configType = reflect.TypeOf(Config{})

// vars reads optional settings with defaults.  Unparseable values fall
// back to the default.
type vars func(string) string

func (v vars) str(k, d string) string {
	if s := v(k); s != "" {
		return s
	}
	return d
}

func (v vars) flag(k string, d bool) bool {
	switch strings.ToLower(v(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func (v vars) num(k string, d int) int {
	if n, err := strconv.Atoi(v(k)); err == nil {
		return n
	}
	return d
}

func (v vars) dur(k string, d time.Duration) time.Duration {
	if t, err := time.ParseDuration(v(k)); err == nil {
		return t
	}
	return d
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(strings.ToUpper(p)); p != "" {
			m[p] = true
		}
	}
	return m
}
