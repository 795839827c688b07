// Package store описывает документное хранилище с фильтруемыми живыми запросами
// и его реализацию в памяти.
package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("document not found")
	ErrAlreadyExists      = errors.New("document already exists")
	ErrPreconditionFailed = errors.New("document precondition failed")
)

// Op - оператор предиката запроса
type Op string

const (
	OpEqual         Op = "=="
	OpArrayContains Op = "array-contains"
	OpIn            Op = "in"
)

// Predicate - условие на одно поле документа
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Where создает предикат
func Where(field string, op Op, value any) Predicate {
	return Predicate{Field: field, Op: op, Value: value}
}

// OrderBy задает сортировку результата
type OrderBy struct {
	Field string
	Desc  bool
}

// Query описывает выборку из одной коллекции
type Query struct {
	Collection string
	Where      []Predicate
	OrderBy    *OrderBy
	Limit      int
}

// From начинает запрос к коллекции
func From(collection string) Query {
	return Query{Collection: collection}
}

// Filter возвращает копию запроса с дополнительным условием
func (q Query) Filter(field string, op Op, value any) Query {
	where := make([]Predicate, 0, len(q.Where)+1)
	where = append(where, q.Where...)
	q.Where = append(where, Where(field, op, value))
	return q
}

// Order возвращает копию запроса с сортировкой
func (q Query) Order(field string, desc bool) Query {
	q.OrderBy = &OrderBy{Field: field, Desc: desc}
	return q
}

// Take возвращает копию запроса с ограничением количества
func (q Query) Take(limit int) Query {
	q.Limit = limit
	return q
}

// Document - документ коллекции
type Document struct {
	ID     string
	Fields Fields
}

// Store - контракт документного хранилища.
//
// Create с пустым id генерирует идентификатор. Update сливает поля с существующим
// документом и применяется только если документ удовлетворяет всем preconditions.
// Subscribe доставляет полный результат запроса при каждом изменении коллекции.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Create(ctx context.Context, collection, id string, fields Fields) (string, error)
	Update(ctx context.Context, collection, id string, fields Fields, preconditions ...Predicate) error
	Query(ctx context.Context, q Query) ([]Document, error)
	Subscribe(ctx context.Context, q Query) (*Stream, error)
}
