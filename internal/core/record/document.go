package record

import (
	"encoding/json"
	"fmt"
	"strings"
)

// 全レコード共通のメタデータフィールド名です。
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldCreatedBy = "createdBy"
	FieldUpdatedAt = "updatedAt"
	FieldUpdatedBy = "updatedBy"
	FieldIsActive  = "isActive"
)

// Document はコレクションに格納される 1 件のレコードです。
// 値は JSON 互換 (string, float64, bool, nil, []any, map[string]any) に正規化されており、
// 日時は ISO-8601 文字列で表現されます。
type Document map[string]any

// ID はレコードの ID を返します。
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Lookup はドット区切りのパスで値を取得します。
func (d Document) Lookup(path string) (any, bool) {
	var current any = map[string]any(d)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func (d Document) set(path string, value any) {
	parts := strings.Split(path, ".")
	m := map[string]any(d)
	for _, part := range parts[:len(parts)-1] {
		next, ok := asMap(m[part])
		if !ok {
			return
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// Clone はドキュメントのディープコピーを返します。
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneMap(d))
}

// Normalize は任意の値を JSON の往復で Document に変換します。
// time.Time や構造体などは JSON 表現に揃えられます。
func Normalize(v any) (Document, error) {
	if v == nil {
		return Document{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encode document: %v", ErrValidation, err)
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: document must be an object: %v", ErrValidation, err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Decode は Document を任意の構造体に変換します。
func Decode(doc Document, v any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("record: encode document: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("record: decode document: %w", err)
	}
	return nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	default:
		return nil, false
	}
}

func cloneMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Document:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return t
	}
}
