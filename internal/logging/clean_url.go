package logging

import "net/url"

// CleanURL returns the URL with any user credentials, query string and
// fragment removed, making it safe to log.
func CleanURL(value string) string {
	u, err := url.Parse(value)
	if err != nil {
		return ""
	}

	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}
