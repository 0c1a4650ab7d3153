package document

import (
	"bytes"
	"errors"
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	ErrKeyExists   = errors.New("key already exists")
	ErrKeyNotFound = errors.New("key not found")
)

// Collection maps normalized user ids to values and remembers insertion
// order, which is also the order of the keys in the encoded JSON object.
// The zero value is an empty collection.
type Collection[V any] struct {
	items *orderedmap.OrderedMap[string, V]
}

func NewCollection[V any]() Collection[V] {
	return Collection[V]{items: orderedmap.New[string, V]()}
}

func (c *Collection[V]) lazyInit() {
	if c.items == nil {
		c.items = orderedmap.New[string, V]()
	}
}

func (c *Collection[V]) Get(key string) (V, bool) {
	if c.items == nil {
		var zero V
		return zero, false
	}
	return c.items.Get(key)
}

func (c *Collection[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Insert adds a new entry at the end of the collection.
func (c *Collection[V]) Insert(key string, value V) error {
	c.lazyInit()
	if c.Has(key) {
		return ErrKeyExists
	}
	c.items.Set(key, value)
	return nil
}

// Update replaces the value of an existing entry, keeping its position.
func (c *Collection[V]) Update(key string, value V) error {
	if !c.Has(key) {
		return ErrKeyNotFound
	}
	c.items.Set(key, value)
	return nil
}

func (c *Collection[V]) Remove(key string) error {
	if c.items == nil {
		return ErrKeyNotFound
	}
	if _, ok := c.items.Delete(key); !ok {
		return ErrKeyNotFound
	}
	return nil
}

func (c *Collection[V]) Len() int {
	if c.items == nil {
		return 0
	}
	return c.items.Len()
}

// All iterates over the entries in insertion order.
func (c *Collection[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if c.items == nil {
			return
		}
		for pair := c.items.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

func (c Collection[V]) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("{}"), nil
	}
	return c.items.MarshalJSON()
}

func (c *Collection[V]) UnmarshalJSON(data []byte) error {
	c.items = orderedmap.New[string, V]()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return c.items.UnmarshalJSON(data)
}
