// Package ids mints sortable unique identifiers for rows and objects.
package ids

import "github.com/segmentio/ksuid"

func New() string {
	return ksuid.New().String()
}
