// Package config provides the static key/value configuration store read once
// at startup.  Lookups of missing keys are always errors, the store never
// substitutes default values.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// maxFileSize is the largest configuration file accepted
const maxFileSize = 1 * 1024 * 1024

var (
	// ErrConfig is returned when the configuration file can not be read or
	// is not well formed
	ErrConfig = errors.New("configuration error")
	// ErrKeyNotFound is returned when a required key is absent
	ErrKeyNotFound = errors.New("configuration key not found")
	// ErrWrongType is returned when a key holds a value of an unexpected type
	ErrWrongType = errors.New("configuration value has wrong type")
)

// Value is a single configuration value as decoded from the file
type Value struct {
	raw any
}

// Raw returns the decoded value
func (v Value) Raw() any {
	return v.raw
}

// Store is an immutable configuration mapping loaded from a file
type Store struct {
	path string
	data map[string]any
}

// Load reads the configuration file at path.  Files ending in .json are
// parsed as JSON, any other file as YAML or JSON
func Load(path string) (*Store, error) {

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)

	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat config file: %v", ErrConfig, err)
	}

	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("%w: config file too large: %d bytes (max %d)",
			ErrConfig, info.Size(), maxFileSize)
	}

	raw, err := os.ReadFile(cleanPath)

	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfig, err)
	}

	data := make(map[string]any)

	// yaml.v3 also accepts JSON documents
	switch strings.ToLower(filepath.Ext(cleanPath)) {
	case ".json":
		err = json.Unmarshal(raw, &data)
	default:
		err = yaml.Unmarshal(raw, &data)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrConfig, cleanPath, err)
	}

	if data == nil {
		return nil, fmt.Errorf("%w: %s does not contain a key/value mapping", ErrConfig, cleanPath)
	}

	return &Store{path: cleanPath, data: data}, nil
}

// FromMap creates a Store from an in memory mapping
func FromMap(data map[string]any) *Store {

	c := make(map[string]any, len(data))

	for k, v := range data {
		c[k] = v
	}

	return &Store{path: "<memory>", data: c}
}

// Path returns the file the store was loaded from
func (s *Store) Path() string {
	return s.path
}

// Keys returns the sorted list of keys held in the store
func (s *Store) Keys() []string {

	keys := make([]string, 0, len(s.data))

	for k := range s.data {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Lookup returns the value for key and whether it was found
func (s *Store) Lookup(key string) (Value, bool) {
	v, ok := s.data[key]
	return Value{raw: v}, ok
}

// Get returns the value for key or an error if the key is absent
func (s *Store) Get(key string) (Value, error) {

	v, ok := s.Lookup(key)

	if !ok {
		return Value{}, fmt.Errorf("%w: %q in %s", ErrKeyNotFound, key, s.path)
	}

	return v, nil
}

// GetBool returns the required boolean value for key
func (s *Store) GetBool(key string) (bool, error) {

	v, err := s.Get(key)

	if err != nil {
		return false, err
	}

	return v.AsBool(key)
}

// GetInt returns the required integer value for key
func (s *Store) GetInt(key string) (int, error) {

	v, err := s.Get(key)

	if err != nil {
		return 0, err
	}

	return v.AsInt(key)
}

// GetFloat returns the required floating point value for key
func (s *Store) GetFloat(key string) (float64, error) {

	v, err := s.Get(key)

	if err != nil {
		return 0, err
	}

	return v.AsFloat(key)
}

// GetString returns the required string value for key
func (s *Store) GetString(key string) (string, error) {

	v, err := s.Get(key)

	if err != nil {
		return "", err
	}

	return v.AsString(key)
}

// GetDuration returns the required duration value for key.  The value must be
// a duration string such as "100ms"
func (s *Store) GetDuration(key string) (time.Duration, error) {

	str, err := s.GetString(key)

	if err != nil {
		return 0, err
	}

	d, err := time.ParseDuration(str)

	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrWrongType, key, err)
	}

	return d, nil
}

// Section returns the nested mapping held at key as its own Store
func (s *Store) Section(key string) (*Store, error) {

	v, err := s.Get(key)

	if err != nil {
		return nil, err
	}

	m, ok := v.raw.(map[string]any)

	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, want mapping", ErrWrongType, key, v.raw)
	}

	sub := FromMap(m)
	sub.path = s.path + ":" + key

	return sub, nil
}

// LookupBool returns the optional boolean value for key
func (s *Store) LookupBool(key string) (bool, bool, error) {

	v, ok := s.Lookup(key)

	if !ok {
		return false, false, nil
	}

	b, err := v.AsBool(key)

	return b, true, err
}

// LookupInt returns the optional integer value for key
func (s *Store) LookupInt(key string) (int, bool, error) {

	v, ok := s.Lookup(key)

	if !ok {
		return 0, false, nil
	}

	i, err := v.AsInt(key)

	return i, true, err
}

// LookupFloat returns the optional floating point value for key
func (s *Store) LookupFloat(key string) (float64, bool, error) {

	v, ok := s.Lookup(key)

	if !ok {
		return 0, false, nil
	}

	f, err := v.AsFloat(key)

	return f, true, err
}

// LookupString returns the optional string value for key
func (s *Store) LookupString(key string) (string, bool, error) {

	v, ok := s.Lookup(key)

	if !ok {
		return "", false, nil
	}

	str, err := v.AsString(key)

	return str, true, err
}

// AsBool converts the value to a bool
func (v Value) AsBool(key string) (bool, error) {

	b, ok := v.raw.(bool)

	if !ok {
		return false, fmt.Errorf("%w: %q is %T, want bool", ErrWrongType, key, v.raw)
	}

	return b, nil
}

// AsInt converts the value to an int.  JSON numbers decode as float64 so whole
// floating point values are accepted
func (v Value) AsInt(key string) (int, error) {

	switch n := v.raw.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}

	return 0, fmt.Errorf("%w: %q is %v (%T), want integer", ErrWrongType, key, v.raw, v.raw)
}

// AsFloat converts the value to a float64
func (v Value) AsFloat(key string) (float64, error) {

	switch n := v.raw.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}

	return 0, fmt.Errorf("%w: %q is %T, want number", ErrWrongType, key, v.raw)
}

// AsString converts the value to a string
func (v Value) AsString(key string) (string, error) {

	str, ok := v.raw.(string)

	if !ok {
		return "", fmt.Errorf("%w: %q is %T, want string", ErrWrongType, key, v.raw)
	}

	return str, nil
}
