package territory

import "time"

// DueState は貸し出し中の区域の返却期限の状態です。
type DueState string

const (
	DueNotApplicable DueState = ""
	DueOnTime        DueState = "on_time"
	DueSoon          DueState = "due_soon"
	DueOverdue       DueState = "overdue"
)

// DefaultDueSoonWindow は返却期限が近いと判定する既定の期間です。
const DefaultDueSoonWindow = 7 * 24 * time.Hour

// Classify は返却予定日と現在時刻から期限の状態を判定します。
// 貸し出し中でない区域は DueNotApplicable です。
func Classify(t *Territory, now time.Time, window time.Duration) DueState {
	if t == nil || t.Status != StatusAssigned || t.Assignment == nil {
		return DueNotApplicable
	}
	due := t.Assignment.ExpectedReturnDate
	switch {
	case now.After(due):
		return DueOverdue
	case due.Sub(now) <= window:
		return DueSoon
	default:
		return DueOnTime
	}
}
