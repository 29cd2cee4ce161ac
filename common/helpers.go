package common

import (
	"fmt"
	"io"
)

func CloseOrLog(c io.Closer) {
	if err := c.Close(); err != nil {
		fmt.Printf("close: %v", err)
	}
}

// Ptr returns a pointer to a copy of v. Handy for optional fields in
// literal tables.
func Ptr[T any](v T) *T {
	return &v
}
