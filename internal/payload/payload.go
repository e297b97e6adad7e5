// Package payload reverses the obfuscation applied by the resolution backend to its
// JSON responses. The scheme is a fixed substitution, a reversal and base64; it
// hides the payload in transit but is not encryption.
package payload

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrDecode reports a payload that failed any stage of the transform.
var ErrDecode = errors.New("decode error")

// Decode turns an obfuscated payload back into a JSON value.
func Decode(obfuscated string) (any, error) {
	var v any
	if err := DecodeInto(obfuscated, &v); err != nil {
		return nil, err
	}

	return v, nil
}

// DecodeInto decodes an obfuscated payload into v, which must be a pointer.
func DecodeInto(obfuscated string, v any) error {
	raw, err := unwrap(obfuscated)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: parse json: %w", ErrDecode, err)
	}

	return nil
}

// Encode is the inverse of Decode. The backend owns encoding in production; this
// exists for fixtures and fake backends.
func Encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: marshal json: %w", ErrDecode, err)
	}

	encoded := base64.StdEncoding.EncodeToString(raw)

	return substitute(reverse(encoded), encodeURLSafe), nil
}

// unwrap applies substitution, reversal and base64 decoding, in that order.
func unwrap(obfuscated string) ([]byte, error) {
	if obfuscated == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	b64 := reverse(substitute(obfuscated, decodeURLSafe))

	enc := base64.StdEncoding
	if len(b64)%4 != 0 && !strings.HasSuffix(b64, "=") {
		enc = base64.RawStdEncoding
	}

	raw, err := enc.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %w", ErrDecode, err)
	}

	return raw, nil
}

type direction int

const (
	decodeURLSafe direction = iota
	encodeURLSafe
)

// substitute mirrors letters within their case (a<->z) and digits (0<->9), and
// translates between the URL-safe and standard base64 alphabets.
func substitute(s string, dir direction) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		b.WriteRune(substituteRune(r, dir))
	}

	return b.String()
}

func substituteRune(r rune, dir direction) rune {
	switch {
	case r >= 'a' && r <= 'z':
		return 'a' + 'z' - r
	case r >= 'A' && r <= 'Z':
		return 'A' + 'Z' - r
	case r >= '0' && r <= '9':
		return '0' + '9' - r
	}

	if dir == decodeURLSafe {
		switch r {
		case '-':
			return '+'
		case '_':
			return '/'
		}

		return r
	}

	switch r {
	case '+':
		return '-'
	case '/':
		return '_'
	}

	return r
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}

	return string(runes)
}
