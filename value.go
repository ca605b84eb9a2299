// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcursor

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

var (
	// ErrConversion is wrapped by every scalar conversion failure. Conversion
	// failures are local and non-fatal: the cursor does not move, and the
	// same token may be read again as a different type.
	ErrConversion = errors.New("conversion failed")

	// ErrNoValue is reported when a string is requested from a Null token.
	ErrNoValue = fmt.Errorf("%w: no value", ErrConversion)
)

// A Value interprets the raw bytes of a single token as scalar types, on
// demand and without mutating them. Every conversion must consume the entire
// token text: a partial match is a failure, not a truncated success.
type Value struct {
	kind Kind
	text []byte
}

// Kind reports the kind of the underlying token.
func (v Value) Kind() Kind { return v.kind }

func (v Value) convErr(want string) error {
	return fmt.Errorf("%w: token %v is not %s", ErrConversion, v.kind, want)
}

func (v Value) number() (string, error) {
	if v.kind != Number {
		return "", v.convErr("a number")
	}
	return string(v.text), nil
}

// str decodes the token as a string regardless of Null handling; the
// exported accessors choose how a Null token is reported.
func (v Value) str() (string, error) {
	if v.kind != String && v.kind != Name {
		return "", v.convErr("a string")
	}
	dec, err := Unquote(v.text)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return string(dec), nil
}

func (v Value) signed(bits int) (int64, error) {
	text, err := v.number()
	if err != nil {
		return 0, err
	}
	z, err := strconv.ParseInt(text, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q as int%d", ErrConversion, text, bits)
	}
	return z, nil
}

func (v Value) unsigned(bits int) (uint64, error) {
	text, err := v.number()
	if err != nil {
		return 0, err
	}
	z, err := strconv.ParseUint(text, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q as uint%d", ErrConversion, text, bits)
	}
	return z, nil
}

// Int8 converts the token to a signed 8-bit integer.
func (v Value) Int8() (int8, error) { z, err := v.signed(8); return int8(z), err }

// Int16 converts the token to a signed 16-bit integer.
func (v Value) Int16() (int16, error) { z, err := v.signed(16); return int16(z), err }

// Int32 converts the token to a signed 32-bit integer.
func (v Value) Int32() (int32, error) { z, err := v.signed(32); return int32(z), err }

// Int64 converts the token to a signed 64-bit integer.
func (v Value) Int64() (int64, error) { return v.signed(64) }

// Uint8 converts the token to an unsigned 8-bit integer.
func (v Value) Uint8() (uint8, error) { z, err := v.unsigned(8); return uint8(z), err }

// Uint16 converts the token to an unsigned 16-bit integer.
func (v Value) Uint16() (uint16, error) { z, err := v.unsigned(16); return uint16(z), err }

// Uint32 converts the token to an unsigned 32-bit integer.
func (v Value) Uint32() (uint32, error) { z, err := v.unsigned(32); return uint32(z), err }

// Uint64 converts the token to an unsigned 64-bit integer.
func (v Value) Uint64() (uint64, error) { return v.unsigned(64) }

// Float32 converts the token to a single-precision floating point value.
func (v Value) Float32() (float32, error) {
	text, err := v.number()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q as float32", ErrConversion, text)
	}
	return float32(f), nil
}

// Float64 converts the token to a double-precision floating point value.
func (v Value) Float64() (float64, error) {
	text, err := v.number()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q as float64", ErrConversion, text)
	}
	return f, nil
}

// Bool converts the token to a boolean.
func (v Value) Bool() (bool, error) {
	switch v.kind {
	case True:
		return true, nil
	case False:
		return false, nil
	}
	return false, v.convErr("a boolean")
}

// Text converts the token to its decoded string value, with quotation marks
// removed and escapes undone. A Null token reports ErrNoValue.
func (v Value) Text() (string, error) {
	if v.kind == Null {
		return "", ErrNoValue
	}
	return v.str()
}

// Time converts a string token to a time.Time in RFC 3339 format.
func (v Value) Time() (time.Time, error) {
	s, err := v.str()
	if err != nil {
		return time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q as RFC 3339 time", ErrConversion, s)
	}
	return ts, nil
}

// UUID converts a string token to a UUID.
func (v Value) UUID() (uuid.UUID, error) {
	s, err := v.str()
	if err != nil {
		return uuid.UUID{}, err
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: %q as UUID", ErrConversion, s)
	}
	return u, nil
}

// Bytes decodes a base64-encoded string token.
func (v Value) Bytes() ([]byte, error) {
	s, err := v.str()
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q as base64", ErrConversion, s)
	}
	return data, nil
}

// Decimal converts a number token to an exact arbitrary-precision decimal.
func (v Value) Decimal() (*apd.Decimal, error) {
	text, err := v.number()
	if err != nil {
		return nil, err
	}
	d, _, err := apd.NewFromString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %q as decimal", ErrConversion, text)
	}
	return d, nil
}

// Any converts the token to a generic Go value: nil for Null, bool for the
// boolean constants, string for strings and names, and a numeric type for
// numbers. The numeric widening order is a fixed contract: the first of
// int16, int32, int64, float64 that represents the token text exactly is
// returned.
func (v Value) Any() (any, error) {
	switch v.kind {
	case Null:
		return nil, nil
	case True:
		return true, nil
	case False:
		return false, nil
	case String, Name:
		return v.str()
	case Number:
		// fall through
	default:
		return nil, v.convErr("a scalar")
	}

	text := string(v.text)
	if z, err := strconv.ParseInt(text, 10, 16); err == nil {
		return int16(z), nil
	}
	if z, err := strconv.ParseInt(text, 10, 32); err == nil {
		return int32(z), nil
	}
	if z, err := strconv.ParseInt(text, 10, 64); err == nil {
		return z, nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %q as number", ErrConversion, text)
}
