package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/skillswap-api/internal/store"
)

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DocumentStore хранит документы в таблице documents (JSONB)
type DocumentStore struct {
	pool *pgxpool.Pool
	bus  store.Bus
	log  *logrus.Entry
}

// NewDocumentStore создает новый экземпляр DocumentStore
func NewDocumentStore(pool *pgxpool.Pool, bus store.Bus, log *logrus.Entry) *DocumentStore {
	return &DocumentStore{pool: pool, bus: bus, log: log}
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (store.Document, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT data FROM documents WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&raw)

	if errors.Is(err, pgx.ErrNoRows) {
		return store.Document{}, fmt.Errorf("%s/%s: %w", collection, id, store.ErrNotFound)
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("ошибка при получении документа %s/%s: %w", collection, id, err)
	}

	fields, err := decodeFields(raw)
	if err != nil {
		return store.Document{}, fmt.Errorf("ошибка разбора документа %s/%s: %w", collection, id, err)
	}
	return store.Document{ID: id, Fields: fields}, nil
}

func (s *DocumentStore) Create(ctx context.Context, collection, id string, fields store.Fields) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}

	data, err := encodeFields(fields)
	if err != nil {
		return "", err
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO NOTHING
	`, collection, id, data)
	if err != nil {
		return "", fmt.Errorf("ошибка при создании документа %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return "", fmt.Errorf("%s/%s: %w", collection, id, store.ErrAlreadyExists)
	}

	s.publish(ctx, collection)
	return id, nil
}

func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields store.Fields, preconditions ...store.Predicate) error {
	data, err := encodeFields(fields)
	if err != nil {
		return err
	}

	sql, args, err := buildUpdate(collection, id, data, preconditions)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении документа %s/%s: %w", collection, id, err)
	}

	if tag.RowsAffected() == 0 {
		if len(preconditions) == 0 {
			return fmt.Errorf("%s/%s: %w", collection, id, store.ErrNotFound)
		}
		// Различаем отсутствие документа и несовпадение условий
		if _, err := s.Get(ctx, collection, id); err != nil {
			return err
		}
		return fmt.Errorf("%s/%s: %w", collection, id, store.ErrPreconditionFailed)
	}

	s.publish(ctx, collection)
	return nil
}

func (s *DocumentStore) Query(ctx context.Context, q store.Query) ([]store.Document, error) {
	sql, args, err := buildSelect(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к коллекции %s: %w", q.Collection, err)
	}
	defer rows.Close()

	docs := make([]store.Document, 0)
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("ошибка сканирования документа: %w", err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора документа %s/%s: %w", q.Collection, id, err)
		}
		docs = append(docs, store.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения результата запроса: %w", err)
	}
	return docs, nil
}

func (s *DocumentStore) Subscribe(ctx context.Context, q store.Query) (*store.Stream, error) {
	// Проверяем запрос заранее, чтобы ошибка не пришла в первом снимке
	if _, _, err := buildSelect(q); err != nil {
		return nil, err
	}
	return store.NewStream(ctx, s.bus, q, s.Query), nil
}

// publish оповещает живые запросы; запись уже зафиксирована, поэтому ошибка только логируется
func (s *DocumentStore) publish(ctx context.Context, collection string) {
	if err := s.bus.Publish(ctx, collection); err != nil {
		s.log.WithError(err).WithField("collection", collection).Warn("⚠️ Не удалось опубликовать изменение")
	}
}

func buildSelect(q store.Query) (string, []any, error) {
	var sb strings.Builder
	args := []any{q.Collection}

	sb.WriteString("SELECT id, data FROM documents WHERE collection = $1")
	for _, p := range q.Where {
		clause, err := predicateSQL(p, &args)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" AND ")
		sb.WriteString(clause)
	}

	if q.OrderBy != nil {
		if !fieldNamePattern.MatchString(q.OrderBy.Field) {
			return "", nil, fmt.Errorf("недопустимое имя поля %q", q.OrderBy.Field)
		}
		args = append(args, q.OrderBy.Field)
		direction := "ASC"
		if q.OrderBy.Desc {
			direction = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY data->($%d::text) %s, id ASC", len(args), direction)
	} else {
		sb.WriteString(" ORDER BY id ASC")
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	return sb.String(), args, nil
}

func buildUpdate(collection, id, data string, preconditions []store.Predicate) (string, []any, error) {
	var sb strings.Builder
	args := []any{collection, id, data}

	sb.WriteString("UPDATE documents SET data = data || $3::jsonb, updated_at = NOW() WHERE collection = $1 AND id = $2")
	for _, p := range preconditions {
		clause, err := predicateSQL(p, &args)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" AND ")
		sb.WriteString(clause)
	}
	return sb.String(), args, nil
}

// predicateSQL переводит предикат в условие на JSONB.
// Равенство и вхождение в массив выражаются через @>, чтобы использовать GIN-индекс.
func predicateSQL(p store.Predicate, args *[]any) (string, error) {
	if !fieldNamePattern.MatchString(p.Field) {
		return "", fmt.Errorf("недопустимое имя поля %q", p.Field)
	}

	switch p.Op {
	case store.OpEqual, store.OpArrayContains:
		value := encodeValue(p.Value)
		if p.Op == store.OpArrayContains {
			value = []any{value}
		}
		doc, err := json.Marshal(map[string]any{p.Field: value})
		if err != nil {
			return "", fmt.Errorf("ошибка кодирования условия %s: %w", p.Field, err)
		}
		*args = append(*args, string(doc))
		return fmt.Sprintf("data @> $%d::jsonb", len(*args)), nil

	case store.OpIn:
		values, ok := stringValues(p.Value)
		if !ok {
			return "", fmt.Errorf("оператор in поддерживает только строки (поле %s)", p.Field)
		}
		*args = append(*args, p.Field, values)
		return fmt.Sprintf("data->>($%d::text) = ANY($%d::text[])", len(*args)-1, len(*args)), nil
	}

	return "", fmt.Errorf("неизвестный оператор %q", p.Op)
}

func stringValues(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			rv := reflect.ValueOf(item)
			if rv.Kind() != reflect.String {
				return nil, false
			}
			out = append(out, rv.String())
		}
		return out, true
	}
	return nil, false
}

func encodeFields(fields store.Fields) (string, error) {
	encoded := make(map[string]any, len(fields))
	for k, v := range fields {
		encoded[k] = encodeValue(v)
	}
	data, err := json.Marshal(encoded)
	if err != nil {
		return "", fmt.Errorf("ошибка кодирования документа: %w", err)
	}
	return string(data), nil
}

// encodeValue заменяет time.Time строкой фиксированной ширины, чтобы сортировка по JSONB была хронологической
func encodeValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(store.TimeLayout)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = encodeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = encodeValue(item)
		}
		return out
	case store.Fields:
		return encodeValue(map[string]any(t))
	}
	return v
}

func decodeFields(raw []byte) (store.Fields, error) {
	fields := store.Fields{}
	if len(raw) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
