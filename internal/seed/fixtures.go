// Package seed は初回起動時に投入する初期データを提供します。
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ogurasousui/congregation-records/internal/adapters/repository/records"
	"github.com/ogurasousui/congregation-records/internal/core/busticket"
	"github.com/ogurasousui/congregation-records/internal/core/record"
	"github.com/ogurasousui/congregation-records/internal/core/territory"
)

// Actor は初期データの作成者として記録される ID です。
const Actor = "mock@user.com"

const day = 24 * time.Hour

// Fixtures はカタログの全コレクションについて初期データを返します。
// 初期データを持たないコレクションは空配列です。
func Fixtures(now time.Time) (map[string][]record.Document, error) {
	now = now.UTC()
	out := make(map[string][]record.Document, len(record.Catalog()))
	for _, c := range record.Catalog() {
		out[c.Name] = []record.Document{}
	}

	for _, t := range territory.Fixture(now) {
		doc, err := records.TerritoryDocument(t)
		if err != nil {
			return nil, err
		}
		out[record.CollectionTerritories] = append(out[record.CollectionTerritories], doc)
	}

	for _, b := range busTickets() {
		doc, err := records.BusTicketDocument(b)
		if err != nil {
			return nil, err
		}
		out[record.CollectionBusTickets] = append(out[record.CollectionBusTickets], doc)
	}

	base := []struct {
		collection string
		data       map[string]any
	}{
		{record.CollectionCleaning, map[string]any{
			"id":          "cl-1",
			"date":        record.FormatInstant(now),
			"endDate":     record.FormatInstant(now.Add(15 * day)),
			"group":       "Grupo 1",
			"meetingDays": []string{"midweek", "weekend"},
			"notes":       "Limpeza geral de primavera.",
		}},
		{record.CollectionPublicTalks, map[string]any{
			"id":           "pt-1",
			"type":         "local",
			"date":         record.FormatInstant(now.Add(10 * day)),
			"time":         "18:00",
			"theme":        "A paz de Deus, como pode protegê-lo?",
			"song":         "112",
			"hasImage":     true,
			"speakerName":  "João da Silva",
			"congregation": "Congregação Central",
		}},
		{record.CollectionPublicTalks, map[string]any{
			"id":           "pt-2",
			"type":         "away",
			"date":         record.FormatInstant(now.Add(17 * day)),
			"time":         "09:30",
			"theme":        "Quem é o seu Deus?",
			"song":         "88",
			"hasImage":     false,
			"speakerName":  "Carlos Pereira (Visitante)",
			"congregation": "Congregação Norte",
			"address":      "Rua das Flores, 123, Bairro Jardim",
			"phone":        "11987654321",
		}},
		{record.CollectionPublishers, map[string]any{
			"id":                    "pub-profile-1",
			"name":                  "João da Silva",
			"birthDate":             "1985-05-20T00:00:00.000Z",
			"baptismDate":           "2005-07-15T00:00:00.000Z",
			"group":                 "1",
			"address":               "Rua das Acácias, 123",
			"phone":                 "11999991111",
			"email":                 "joao.silva@email.com",
			"isPublisher":           true,
			"isMinisterialServant":  true,
			"privileges":            "Operador de Som",
			"emergencyContactName":  "Maria da Silva",
			"emergencyContactPhone": "11988882222",
			"notes":                 "Disponível para ajudar com transportes.",
		}},
		{record.CollectionLifeMinistry, lifeMinistrySchedule(now)},
	}
	for _, b := range base {
		doc, err := record.Normalize(b.data)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", b.collection, err)
		}
		stamp := record.FormatInstant(now)
		doc[record.FieldCreatedAt] = stamp
		doc[record.FieldCreatedBy] = Actor
		doc[record.FieldIsActive] = true
		out[b.collection] = append(out[b.collection], doc)
	}
	return out, nil
}

// Seeder は空のコレクションにのみ初期データを書き込むストアです。
type Seeder interface {
	Seed(ctx context.Context, fixtures map[string][]record.Document) error
}

// Apply は初期データを組み立てて Seeder に書き込みます。
func Apply(ctx context.Context, seeder Seeder, now time.Time, logger zerolog.Logger) error {
	fixtures, err := Fixtures(now)
	if err != nil {
		return err
	}
	if err := seeder.Seed(ctx, fixtures); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Info().Int("collections", len(fixtures)).Msg("seed applied")
	return nil
}

func busTickets() []*busticket.BusTicket {
	paidNotes := "Pagamento completo."
	partialNotes := "Pagará o restante na próxima semana."
	reservedNotes := "Reserva para a família."
	tickets := []*busticket.BusTicket{
		{
			ID:            "ticket-1",
			SaleDate:      time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
			Name:          "João da Silva",
			Document:      "123.456.789-00",
			TotalPeople:   2,
			Days:          []busticket.Day{busticket.DayFriday, busticket.DaySaturday, busticket.DaySunday},
			UnitPrice:     50,
			ExtraPeople:   []busticket.ExtraPerson{{ID: "ep-1", Name: "Maria da Silva", Document: "987.654.321-11"}},
			AmountPaid:    300,
			PaymentMethod: busticket.PaymentPix,
			Status:        busticket.StatusPaid,
			Notes:         &paidNotes,
		},
		{
			ID:            "ticket-2",
			SaleDate:      time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC),
			Name:          "Carlos Pereira",
			Document:      "111.222.333-44",
			TotalPeople:   1,
			Days:          []busticket.Day{busticket.DaySaturday, busticket.DaySunday},
			UnitPrice:     50,
			AmountPaid:    50,
			PaymentMethod: busticket.PaymentCash,
			Status:        busticket.StatusPartial,
			Notes:         &partialNotes,
		},
		{
			ID:          "ticket-3",
			SaleDate:    time.Date(2024, 8, 5, 0, 0, 0, 0, time.UTC),
			Name:        "Ana Souza",
			Document:    "555.666.777-88",
			TotalPeople: 4,
			Days:        []busticket.Day{busticket.DayFriday, busticket.DaySaturday, busticket.DaySunday},
			UnitPrice:   50,
			ExtraPeople: []busticket.ExtraPerson{
				{ID: "ep-2", Name: "Pedro Souza", Document: "1"},
				{ID: "ep-3", Name: "Bia Souza", Document: "2"},
				{ID: "ep-4", Name: "Lucas Souza", Document: "3"},
			},
			Status: busticket.StatusReserved,
			Notes:  &reservedNotes,
		},
	}
	for _, t := range tickets {
		t.Recalculate()
	}
	return tickets
}

func lifeMinistrySchedule(now time.Time) map[string]any {
	offset := (8 - int(now.Weekday())) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day(), 19, 30, 0, 0, time.UTC).AddDate(0, 0, offset)
	return map[string]any{
		"id":            "lm-1",
		"week":          "15-21 de Julho",
		"date":          record.FormatInstant(monday),
		"initialSong":   "120",
		"president":     "Antônio Ferreira",
		"initialPrayer": "José Almeida",
		"treasuresTheme": map[string]any{
			"theme":   "Jeová abençoa os humildes e castiga os orgulhosos",
			"speaker": "Sérgio Viana",
		},
		"spiritualGems": map[string]any{"speaker": "Ricardo Borges"},
		"bibleReading":  map[string]any{"student": "Carlos Andrade"},
		"studentParts": []map[string]any{
			{"id": "sp-2", "theme": "Primeira Conversa", "time": 2, "student": "Beatriz Lima", "helper": "Sofia Costa"},
			{"id": "sp-3", "theme": "Revisita", "time": 4, "student": "Mariana Campos", "helper": "Gabriela Dias"},
			{"id": "sp-4", "theme": "Estudo Bíblico", "time": 6, "student": "Rafael Gomes", "helper": "Lucas Martins"},
		},
		"intermediateSong": "98",
		"christianLifeParts": []map[string]any{
			{"id": "clp-1", "theme": "Necessidades Locais", "time": 15, "speaker": "Ricardo Borges"},
			{"id": "clp-2", "theme": "Como Fazer Amigos que Amam a Jeová", "time": 15, "speaker": "Sérgio Viana"},
		},
		"congregationBibleStudy": map[string]any{
			"conductor": "Fernando Duarte",
			"reader":    "Paulo Ribeiro",
		},
		"finalSong":   "101",
		"finalPrayer": "Roberto Siqueira",
	}
}
