// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// IntFromString parses the string value as a base 10 int.
func IntFromString(r Reader[string]) Reader[int] {
	return Map(r, func(_ context.Context, s string) (int, error) {
		return strconv.Atoi(strings.TrimSpace(s))
	})
}

// Int64FromString parses the string value as a base 10 int64.
func Int64FromString(r Reader[string]) Reader[int64] {
	return Map(r, func(_ context.Context, s string) (int64, error) {
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	})
}

// Float64FromString parses the string value as a float64.
func Float64FromString(r Reader[string]) Reader[float64] {
	return Map(r, func(_ context.Context, s string) (float64, error) {
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	})
}

// BoolFromString parses the string value with [strconv.ParseBool].
func BoolFromString(r Reader[string]) Reader[bool] {
	return Map(r, func(_ context.Context, s string) (bool, error) {
		return strconv.ParseBool(strings.TrimSpace(s))
	})
}

// DurationFromString parses the string value with [time.ParseDuration].
func DurationFromString(r Reader[string]) Reader[time.Duration] {
	return Map(r, func(_ context.Context, s string) (time.Duration, error) {
		return time.ParseDuration(strings.TrimSpace(s))
	})
}

// StringsFromString splits a comma separated value, dropping empty entries.
func StringsFromString(r Reader[string]) Reader[[]string] {
	return Map(r, func(_ context.Context, s string) ([]string, error) {
		var out []string
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
		return out, nil
	})
}

// UnmarshalJSON decodes the JSON document read from r into a T.
func UnmarshalJSON[T any](r Reader[io.Reader]) Reader[T] {
	return Map(r, func(_ context.Context, src io.Reader) (T, error) {
		var v T
		err := json.NewDecoder(src).Decode(&v)
		if err != nil {
			return v, fmt.Errorf("config: failed to decode json: %w", err)
		}
		return v, nil
	})
}

// UnmarshalYAML decodes the YAML document read from r into a T.
func UnmarshalYAML[T any](r Reader[io.Reader]) Reader[T] {
	return Map(r, func(_ context.Context, src io.Reader) (T, error) {
		var v T
		err := yaml.NewDecoder(src).Decode(&v)
		if err == io.EOF {
			return v, nil
		}
		if err != nil {
			return v, fmt.Errorf("config: failed to decode yaml: %w", err)
		}
		return v, nil
	})
}

// File reads the whole file named by path. An unset or empty path yields
// an unset value.
func File(path Reader[string]) Reader[io.Reader] {
	return ReaderFunc[io.Reader](func(ctx context.Context) (Value[io.Reader], error) {
		name, err := Read(ctx, Default("", path))
		if err != nil || name == "" {
			return Value[io.Reader]{}, err
		}

		b, err := os.ReadFile(name)
		if err != nil {
			return Value[io.Reader]{}, fmt.Errorf("config: failed to read file: %w", err)
		}
		return ValueOf[io.Reader](bytes.NewReader(b)), nil
	})
}
