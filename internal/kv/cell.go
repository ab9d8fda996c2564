package kv

import (
	"encoding/json"
	"fmt"

	"github.com/google/orderedcode"
)

// Value is a single typed storage cell. Values are JSON encoded.
type Value[V any] struct {
	store Store
	key   []byte
}

// NewValue binds a cell named name in store.
func NewValue[V any](store Store, name string) Value[V] {
	return Value[V]{store: store, key: mustKey(name)}
}

// Get returns the stored value and whether it exists.
func (v Value[V]) Get() (V, bool, error) {
	return get[V](v.store, v.key)
}

// GetOrDefault returns the stored value or the zero value when the cell is
// empty.
func (v Value[V]) GetOrDefault() (V, error) {
	val, _, err := v.Get()
	return val, err
}

// Exists reports whether the cell holds a value.
func (v Value[V]) Exists() (bool, error) {
	return v.store.Has(v.key)
}

func (v Value[V]) Set(val V) error {
	return set(v.store, v.key, val)
}

// Kill empties the cell.
func (v Value[V]) Kill() error {
	return v.store.Delete(v.key)
}

// Key returns the raw storage key of the cell.
func (v Value[V]) Key() []byte { return v.key }

// KeyEncoder lists the orderedcode items identifying k inside a map.
type KeyEncoder[K any] func(k K) []interface{}

// Map is a typed storage map. Keys are orderedcode encoded under the map's
// name; values are JSON encoded.
type Map[K, V any] struct {
	store  Store
	name   string
	encode KeyEncoder[K]
}

// NewMap binds a map named name in store.
func NewMap[K, V any](store Store, name string, encode KeyEncoder[K]) Map[K, V] {
	return Map[K, V]{store: store, name: name, encode: encode}
}

// Get returns the value at k and whether it exists.
func (m Map[K, V]) Get(k K) (V, bool, error) {
	return get[V](m.store, m.Key(k))
}

// GetOrDefault returns the value at k or the zero value when absent.
func (m Map[K, V]) GetOrDefault(k K) (V, error) {
	val, _, err := m.Get(k)
	return val, err
}

func (m Map[K, V]) Has(k K) (bool, error) {
	return m.store.Has(m.Key(k))
}

func (m Map[K, V]) Set(k K, val V) error {
	return set(m.store, m.Key(k), val)
}

func (m Map[K, V]) Delete(k K) error {
	return m.store.Delete(m.Key(k))
}

// Key returns the raw storage key of k.
func (m Map[K, V]) Key(k K) []byte {
	items := append([]interface{}{m.name}, m.encode(k)...)
	return mustKey(items...)
}

// Prefix returns the raw storage prefix shared by every key of the map.
func (m Map[K, V]) Prefix() []byte {
	return mustKey(m.name)
}

// Uint64Key encodes uint64 map keys.
func Uint64Key(k uint64) []interface{} { return []interface{}{k} }

// StringKey encodes string map keys.
func StringKey(k string) []interface{} { return []interface{}{k} }

func get[V any](store Store, key []byte) (V, bool, error) {
	var val V
	bz, err := store.Get(key)
	if err != nil {
		return val, false, err
	}
	if bz == nil {
		return val, false, nil
	}
	if err := json.Unmarshal(bz, &val); err != nil {
		panic(fmt.Errorf("kv: decoding value at %X: %w", key, err))
	}
	return val, true, nil
}

func set(store Store, key []byte, val interface{}) error {
	bz, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("kv: encoding value at %X: %w", key, err)
	}
	return store.Set(key, bz)
}

func mustKey(items ...interface{}) []byte {
	key, err := orderedcode.Append(nil, items...)
	if err != nil {
		panic(err)
	}
	return key
}
