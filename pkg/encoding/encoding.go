// Package encoding provides text decoding for geometry sources written in
// legacy code pages.
package encoding

import (
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned by Lookup for unsupported names.
var ErrUnknownEncoding = errors.New("unknown text encoding")

// UTF8 is the default encoding name.
const UTF8 = "utf-8"

var encodings = map[string]xencoding.Encoding{
	UTF8:           unicode.UTF8BOM,
	"euc-kr":       korean.EUCKR,
	"windows-1252": charmap.Windows1252,
	"latin1":       charmap.ISO8859_1,
}

var aliases = map[string]string{
	"":           UTF8,
	"utf8":       UTF8,
	"cp949":      "euc-kr",
	"euckr":      "euc-kr",
	"cp1252":     "windows-1252",
	"iso-8859-1": "latin1",
}

// Decoder converts source text to UTF-8.
type Decoder struct {
	name string
	enc  xencoding.Encoding
}

// Lookup returns the decoder for an encoding name. Names are case-insensitive;
// an empty name selects UTF-8.
func Lookup(name string) (*Decoder, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	enc, ok := encodings[key]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEncoding, "%q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return &Decoder{name: key, enc: enc}, nil
}

// Names returns the canonical encoding names, sorted.
func Names() []string {
	names := make([]string, 0, len(encodings))
	for name := range encodings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Name returns the canonical encoding name.
func (d *Decoder) Name() string {
	return d.name
}

// Reader wraps r so that reads yield UTF-8. A leading UTF-8 byte order mark
// is dropped.
func (d *Decoder) Reader(r io.Reader) io.Reader {
	return transform.NewReader(r, d.enc.NewDecoder())
}

// String decodes data to a UTF-8 string.
// Returns the input as-is if conversion fails.
func (d *Decoder) String(data []byte) string {
	result, _, err := transform.Bytes(d.enc.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}
