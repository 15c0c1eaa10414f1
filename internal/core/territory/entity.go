package territory

import "time"

// Status は区域の状態を表します。
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusRequested Status = "REQUESTED"
	StatusAssigned  Status = "ASSIGNED"
)

// Valid は既知の状態かを返します。
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusRequested, StatusAssigned:
		return true
	default:
		return false
	}
}

// Assignment は区域の貸し出し情報です。
type Assignment struct {
	PublisherName      string
	RequestNotes       *string
	CheckoutDate       time.Time
	ExpectedReturnDate time.Time
}

// Territory は区域エンティティです。
type Territory struct {
	ID         string
	Number     int
	Status     Status
	Assignment *Assignment
}

// Consistent は assignment の有無と状態が一致しているかを返します。
func (t *Territory) Consistent() bool {
	return (t.Assignment == nil) == (t.Status == StatusAvailable)
}

// Clone はディープコピーを返します。
func (t *Territory) Clone() *Territory {
	if t == nil {
		return nil
	}
	out := *t
	if t.Assignment != nil {
		a := *t.Assignment
		if a.RequestNotes != nil {
			notes := *a.RequestNotes
			a.RequestNotes = &notes
		}
		out.Assignment = &a
	}
	return &out
}
