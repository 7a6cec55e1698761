package id

import "github.com/teris-io/shortid"

// ShortId returns a short url-safe id, used for device user codes.
func ShortId() string {
	id, err := shortid.Generate()
	if err != nil {
		return ""
	}
	return id
}
