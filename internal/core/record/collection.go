package record

import (
	"fmt"
	"sort"

	"github.com/ogurasousui/congregation-records/internal/core/actor"
)

// Kind はコレクションの種別です。
type Kind int

const (
	// KindBase は監査メタデータと論理削除を持つコレクションです。
	KindBase Kind = iota
	// KindRaw はメタデータを持たず物理削除のみを許可するコレクションです。
	KindRaw
)

// ActiveFilter は一覧取得時の有効フラグの扱いです。
type ActiveFilter int

const (
	// FilterStrict は isActive == true のレコードのみを返します。
	FilterStrict ActiveFilter = iota
	// FilterLenient は isActive != false のレコードを返します。
	FilterLenient
	// FilterNone はフィルタを行いません。
	FilterNone
)

// Direction はソート方向です。
type Direction string

const (
	DirectionAsc  Direction = "asc"
	DirectionDesc Direction = "desc"
)

// SortSpec はソート対象フィールドと方向です。
type SortSpec struct {
	Field     string
	Direction Direction
}

// Collection はコレクションごとの規則を表します。
type Collection struct {
	Name          string
	Kind          Kind
	Filter        ActiveFilter
	DateFields    []string
	RequiredDates []string
	DefaultSort   SortSpec
	// Managed が true のコレクションは専用サービス経由でのみ作成・更新されます。
	Managed bool
	// Permanent が true のコレクションは削除できません。
	Permanent bool
	// OpenSubmission が true のコレクションは出版者も作成できます。それ以外の書き込みは奉仕者のみです。
	OpenSubmission bool
}

// Archivable は論理削除が可能かを返します。
func (c Collection) Archivable() bool {
	return c.Kind == KindBase
}

// CanCreate は役割がレコードを作成できるかを返します。
func (c Collection) CanCreate(role actor.Role) bool {
	return c.OpenSubmission || role == actor.RoleServant
}

// Deletable は物理削除が可能かを返します。
func (c Collection) Deletable() bool {
	return c.Kind == KindRaw && !c.Permanent
}

// カタログに登録されているコレクション名です。
const (
	CollectionLifeMinistry = "programacoes"
	CollectionReports      = "relatorios"
	CollectionAttendance   = "assistencia"
	CollectionTerritories  = "territorios"
	CollectionBusTickets   = "passagens"
	CollectionAssignments  = "designacoes"
	CollectionCleaning     = "limpeza"
	CollectionFieldService = "servico_campo"
	CollectionConductors   = "dirigentes"
	CollectionShepherding  = "pastoreio"
	CollectionPublicTalks  = "discursos_publicos"
	CollectionPublishers   = "publicadores"
)

var baseDates = []string{FieldCreatedAt, FieldUpdatedAt}

func baseCollection(name string, dateFields []string, required []string, sortSpec SortSpec) Collection {
	return Collection{
		Name:          name,
		Kind:          KindBase,
		Filter:        FilterStrict,
		DateFields:    append(append([]string{}, baseDates...), dateFields...),
		RequiredDates: required,
		DefaultSort:   sortSpec,
	}
}

var catalog = map[string]Collection{
	CollectionLifeMinistry: baseCollection(CollectionLifeMinistry, []string{"date"}, []string{"date"}, SortSpec{Field: "date", Direction: DirectionDesc}),
	CollectionReports: func() Collection {
		c := baseCollection(CollectionReports, []string{"date", "submittedAt"}, nil, SortSpec{Field: "submittedAt", Direction: DirectionDesc})
		c.Filter = FilterLenient
		c.OpenSubmission = true
		return c
	}(),
	CollectionAttendance: func() Collection {
		c := baseCollection(CollectionAttendance, []string{"date"}, []string{"date"}, SortSpec{Field: "date", Direction: DirectionDesc})
		c.OpenSubmission = true
		return c
	}(),
	CollectionAssignments:  baseCollection(CollectionAssignments, []string{"date"}, []string{"date"}, SortSpec{Field: "date", Direction: DirectionDesc}),
	CollectionCleaning:     baseCollection(CollectionCleaning, []string{"date", "endDate"}, []string{"date"}, SortSpec{Field: "date", Direction: DirectionDesc}),
	CollectionFieldService: baseCollection(CollectionFieldService, []string{"date"}, []string{"date"}, SortSpec{Field: "date", Direction: DirectionDesc}),
	CollectionConductors:   baseCollection(CollectionConductors, []string{"date"}, nil, SortSpec{Field: "date", Direction: DirectionDesc}),
	CollectionShepherding:  baseCollection(CollectionShepherding, []string{"date"}, nil, SortSpec{Field: "date", Direction: DirectionDesc}),
	CollectionPublicTalks:  baseCollection(CollectionPublicTalks, []string{"date"}, []string{"date"}, SortSpec{Field: "date", Direction: DirectionAsc}),
	CollectionPublishers:   baseCollection(CollectionPublishers, []string{"birthDate", "baptismDate"}, []string{"birthDate"}, SortSpec{Field: "name", Direction: DirectionAsc}),
	CollectionTerritories: {
		Name:        CollectionTerritories,
		Kind:        KindRaw,
		Filter:      FilterNone,
		DateFields:  []string{"assignment.checkoutDate", "assignment.expectedReturnDate"},
		DefaultSort: SortSpec{Field: "number", Direction: DirectionAsc},
		Managed:     true,
		Permanent:   true,
	},
	CollectionBusTickets: {
		Name:          CollectionBusTickets,
		Kind:          KindRaw,
		Filter:        FilterNone,
		DateFields:    []string{"saleDate"},
		RequiredDates: []string{"saleDate"},
		DefaultSort:   SortSpec{Field: "saleDate", Direction: DirectionDesc},
		Managed:       true,
	},
}

// LookupCollection は名前からコレクションを取得します。
func LookupCollection(name string) (Collection, error) {
	c, ok := catalog[name]
	if !ok {
		return Collection{}, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return c, nil
}

// MustCollection はカタログに存在するコレクションを返します。存在しない場合は panic します。
func MustCollection(name string) Collection {
	c, err := LookupCollection(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Catalog は全コレクションを名前順で返します。
func Catalog() []Collection {
	out := make([]Collection, 0, len(catalog))
	for _, c := range catalog {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
