// Package ids issues sortable, globally unique identifiers for stored entities.
package ids

import "github.com/segmentio/ksuid"

func New() string {
	return ksuid.New().String()
}
