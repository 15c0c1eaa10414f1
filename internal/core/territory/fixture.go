package territory

import (
	"fmt"
	"time"
)

// FixtureSize は初期データの区域数です。
const FixtureSize = 26

const day = 24 * time.Hour

// Fixture は初回起動時に投入する区域一覧を返します。
// T5 は貸し出し中、T12 は申請中、それ以外は利用可能です。
func Fixture(now time.Time) []*Territory {
	now = now.UTC()
	out := make([]*Territory, 0, FixtureSize)
	for n := 1; n <= FixtureSize; n++ {
		out = append(out, &Territory{
			ID:     fmt.Sprintf("T%d", n),
			Number: n,
			Status: StatusAvailable,
		})
	}

	assignedNotes := "Território residencial com muitos prédios."
	out[4].Status = StatusAssigned
	out[4].Assignment = &Assignment{
		PublisherName:      "João da Silva",
		RequestNotes:       &assignedNotes,
		CheckoutDate:       now.Add(-20 * day),
		ExpectedReturnDate: now.Add(10 * day),
	}

	requestedNotes := "Gostaria de trabalhar neste território comercial."
	out[11].Status = StatusRequested
	out[11].Assignment = &Assignment{
		PublisherName:      "Maria Oliveira",
		RequestNotes:       &requestedNotes,
		CheckoutDate:       now,
		ExpectedReturnDate: now.Add(30 * day),
	}
	return out
}
