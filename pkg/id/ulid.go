package id

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// GetUlid returns a lexicographically sortable unique id, used for
// invitation ids so listing follows creation order.
func GetUlid() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	ms := ulid.Timestamp(time.Now())
	id, err := ulid.New(ms, entropy)
	if err != nil {
		return ""
	}
	return id.String()
}
