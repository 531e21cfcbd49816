package helpers

import (
	"encoding/hex"
	"strings"

	"github.com/juju/errors"
)

func MustHex(s string) []byte {
	b, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return b
}

// ParseHex accepts "8001", "80 01" and "80:01".
func ParseHex(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ":", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Annotatef(err, "hex=%s", s)
	}
	return b, nil
}
