package models

import "encoding/json"

// Reference points at another record either by id only or with the record
// already resolved. Resolution is always an explicit call on the resolver.
type Reference[T any] struct {
	id       int
	resolved *T
}

func RefId[T any](id int) Reference[T] {
	return Reference[T]{id: id}
}

func Resolved[T any](id int, v T) Reference[T] {
	return Reference[T]{id: id, resolved: &v}
}

func (r Reference[T]) ID() int {
	return r.id
}

// IsZero is true for an unset optional reference.
func (r Reference[T]) IsZero() bool {
	return r.id == 0
}

func (r Reference[T]) IsResolved() bool {
	return r.resolved != nil
}

func (r Reference[T]) Value() (T, bool) {
	if r.resolved == nil {
		var zero T
		return zero, false
	}
	return *r.resolved, true
}

type referenceJSON[T any] struct {
	Id   int `json:"id"`
	Data *T  `json:"data,omitempty"`
}

func (r Reference[T]) MarshalJSON() ([]byte, error) {
	if r.id == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(referenceJSON[T]{Id: r.id, Data: r.resolved})
}
