package process

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// Decode converts command output from the named encoding to UTF-8. An empty
// name or "utf-8" only strips a leading byte order mark. Names are looked up in the
// WHATWG index first (utf-8, ibm866, windows-1251, ...) and then the IANA
// registry (IBM437, IBM850, ...).
func Decode(out []byte, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return strings.TrimPrefix(string(out), "\uFEFF"), nil
	}

	enc, err := lookupEncoding(name)
	if err != nil {
		return "", err
	}

	decoded, err := enc.NewDecoder().Bytes(out)
	if err != nil {
		return "", fmt.Errorf("failed to decode output as %s: %w", name, err)
	}
	return string(decoded), nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	if enc, err := htmlindex.Get(name); err == nil {
		return enc, nil
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", name)
}
