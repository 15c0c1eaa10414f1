package record

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

var metadataFields = []string{FieldID, FieldCreatedAt, FieldCreatedBy, FieldUpdatedAt, FieldUpdatedBy, FieldIsActive}

// PrepareCreate は新規作成するレコードを組み立てます。
// 入力のメタデータは無視され、BaseRecord コレクションでは監査フィールドが付与されます。
func PrepareCreate(c Collection, data Document, id, actorID string, now time.Time) (Document, error) {
	doc, err := Normalize(map[string]any(data))
	if err != nil {
		return nil, err
	}
	for _, f := range metadataFields {
		delete(doc, f)
	}
	if err := normalizeDates(c, doc); err != nil {
		return nil, err
	}
	for _, f := range c.DateFields {
		if v, ok := doc[f]; ok && v == nil {
			delete(doc, f)
		}
	}
	if err := checkRequiredDates(c, doc); err != nil {
		return nil, err
	}
	doc[FieldID] = id
	if c.Kind == KindBase {
		stamp := FormatInstant(now)
		doc[FieldCreatedAt] = stamp
		doc[FieldCreatedBy] = actorID
		doc[FieldUpdatedAt] = stamp
		doc[FieldUpdatedBy] = actorID
		doc[FieldIsActive] = true
	}
	return doc, nil
}

// ApplyPatch は既存レコードにパッチを浅くマージした結果を返します。
// nil の値はフィールドの削除を意味します。isActive は ApplyArchive でのみ変更できます。
func ApplyPatch(c Collection, existing Document, patch Document, actorID string, now time.Time) (Document, error) {
	p, err := Normalize(map[string]any(patch))
	if err != nil {
		return nil, err
	}
	for _, f := range metadataFields {
		delete(p, f)
	}
	if err := normalizeDates(c, p); err != nil {
		return nil, err
	}

	merged := existing.Clone()
	if merged == nil {
		merged = Document{}
	}
	for k, v := range p {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	if err := checkRequiredDates(c, merged); err != nil {
		return nil, err
	}
	if c.Kind == KindBase {
		merged[FieldUpdatedAt] = FormatInstant(now)
		merged[FieldUpdatedBy] = actorID
	}
	return merged, nil
}

// ApplyArchive は既存レコードを論理削除した結果を返します。一度無効にしたレコードは戻せません。
func ApplyArchive(c Collection, existing Document, actorID string, now time.Time) (Document, error) {
	if !c.Archivable() {
		return nil, fmt.Errorf("%w: archive %s", ErrUnsupportedOperation, c.Name)
	}
	archived := existing.Clone()
	if archived == nil {
		archived = Document{}
	}
	archived[FieldIsActive] = false
	archived[FieldUpdatedAt] = FormatInstant(now)
	archived[FieldUpdatedBy] = actorID
	return archived, nil
}

// Visible はコレクションの有効フィルタに照らしてレコードを一覧に含めるかを返します。
func Visible(c Collection, doc Document) bool {
	active, present := doc[FieldIsActive].(bool)
	switch c.Filter {
	case FilterStrict:
		return present && active
	case FilterLenient:
		return !present || active
	default:
		return true
	}
}

// ResolveSort は呼び出し側の指定とコレクションの既定値からソート条件を決定します。
func ResolveSort(c Collection, opts ListOptions) (SortSpec, error) {
	order := c.DefaultSort
	if field := strings.TrimSpace(opts.SortField); field != "" {
		order.Field = field
		order.Direction = DirectionDesc
	}
	switch Direction(strings.ToLower(string(opts.Direction))) {
	case "":
	case DirectionAsc:
		order.Direction = DirectionAsc
	case DirectionDesc:
		order.Direction = DirectionDesc
	default:
		return SortSpec{}, fieldError("direction", fmt.Sprintf("unsupported direction %q", opts.Direction))
	}
	if order.Field == "" {
		order.Field = FieldCreatedAt
	}
	if order.Direction == "" {
		order.Direction = DirectionDesc
	}
	return order, nil
}

// FilterAndSort は一覧取得の共通処理です。両バックエンドが同一の結果を返すためにこの関数を使用します。
func FilterAndSort(c Collection, docs []Document, opts ListOptions) ([]Document, error) {
	spec, err := ResolveSort(c, opts)
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if Visible(c, d) {
			out = append(out, d)
		}
	}
	SortDocuments(out, spec)
	return out, nil
}

// SortDocuments はフィールド値でソートします。値を持たないレコードは方向に関わらず末尾に置き、
// 同値の場合は ID の昇順で並べます。
func SortDocuments(docs []Document, spec SortSpec) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, aok := docs[i].Lookup(spec.Field)
		b, bok := docs[j].Lookup(spec.Field)
		aok = aok && a != nil
		bok = bok && b != nil
		switch {
		case aok && !bok:
			return true
		case !aok && bok:
			return false
		case aok && bok:
			if cmp := compareValues(a, b); cmp != 0 {
				if spec.Direction == DirectionAsc {
					return cmp < 0
				}
				return cmp > 0
			}
		}
		return docs[i].ID() < docs[j].ID()
	})
}

func typeRank(v any) int {
	switch v.(type) {
	case bool:
		return 0
	case float64, int, int64:
		return 1
	case string:
		return 2
	default:
		return 3
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 0:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case 1:
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	case 2:
		return strings.Compare(a.(string), b.(string))
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}
