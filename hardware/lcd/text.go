package lcd

import (
	"strings"

	"github.com/juju/errors"
	"github.com/paulrosania/go-charset/charset"
	_ "github.com/paulrosania/go-charset/data"
)

const MaxRows = 2

// Chunks splits text for two row display:
// - first MaxRows lines
// - each line cut into `width` wide pieces
// - empty pieces dropped
// - at most MaxRows pieces kept
// Anything beyond is silently lost, no word wrapping.
func Chunks(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > MaxRows {
		lines = lines[:MaxRows]
	}
	out := make([]string, 0, MaxRows)
	for _, line := range lines {
		rs := []rune(line)
		for start := 0; start < len(rs); start += width {
			end := start + width
			if end > len(rs) {
				end = len(rs)
			}
			out = append(out, string(rs[start:end]))
			if len(out) == MaxRows {
				return out
			}
		}
	}
	return out
}

// Translator encodes text into display character ROM bytes.
type Translator struct {
	tr charset.Translator
}

// NewTranslator with empty codepage writes one byte per rune, truncated.
func NewTranslator(codepage string) (*Translator, error) {
	if codepage == "" {
		return &Translator{}, nil
	}
	tr, err := charset.TranslatorTo(codepage)
	if err != nil {
		return nil, errors.Annotatef(err, "lcd codepage=%s", codepage)
	}
	return &Translator{tr: tr}, nil
}

func (self *Translator) Translate(s string) ([]byte, error) {
	if len(s) == 0 {
		return nil, nil
	}
	if self == nil || self.tr == nil {
		rs := []rune(s)
		b := make([]byte, len(rs))
		for i, r := range rs {
			b[i] = byte(r)
		}
		return b, nil
	}
	_, tb, err := self.tr.Translate([]byte(s), true)
	if err != nil {
		return nil, errors.Annotate(err, "lcd translate")
	}
	// translator reuses single internal buffer, make a copy
	return append([]byte(nil), tb...), nil
}
