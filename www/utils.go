package www

import (
	"net/url"
	"sort"
	"strconv"
)

func intOrDefault(u *url.URL, key string, defaultValue int) int {
	if v := u.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func sorted(strs []string) []string {
	sort.Strings(strs)
	return strs
}
