package fields

import (
	"fmt"
	"html"
	"io"
	"strings"

	"partsbot/internal"
)

const missing = "—"

func BuildCard(record internal.Record, table AliasTable) internal.Card {
	return internal.Card{
		Code:         table.Resolve(record, internal.FieldCode, ""),
		Name:         table.Resolve(record, internal.FieldName, ""),
		Type:         table.Resolve(record, internal.FieldType, ""),
		PartNumber:   table.Resolve(record, internal.FieldPartNumber, ""),
		OEMNumber:    table.Resolve(record, internal.FieldOEMNumber, ""),
		Quantity:     table.Resolve(record, internal.FieldQuantity, ""),
		Price:        table.Resolve(record, internal.FieldPrice, ""),
		Currency:     table.Resolve(record, internal.FieldCurrency, ""),
		Manufacturer: table.Resolve(record, internal.FieldManufacturer, ""),
		ImageURL:     table.Resolve(record, internal.FieldImageURL, ""),
	}
}

type cardLine struct {
	icon  string
	label string
	value string
}

func cardLines(card internal.Card) []cardLine {
	price := strings.TrimSpace(card.Price + " " + strings.ToUpper(card.Currency))
	return []cardLine{
		{"🔷", "КОД", strings.ToUpper(card.Code)},
		{"📝", "НАИМЕНОВАНИЕ", card.Name},
		{"🔧", "ТИП", strings.ToUpper(card.Type)},
		{"🧩", "ПАРТ №", strings.ToUpper(card.PartNumber)},
		{"📦", "OEM №", strings.ToUpper(card.OEMNumber)},
		{"🔢", "КОЛ-ВО", card.Quantity},
		{"💰", "ЦЕНА", price},
		{"🏭", "ИЗГОТОВИТЕЛЬ", strings.ToUpper(card.Manufacturer)},
	}
}

// WriteText writes the plain card used for sharing and CLI output.
func WriteText(w io.Writer, card internal.Card) error {
	for _, l := range cardLines(card) {
		value := l.value
		if value == "" {
			value = missing
		}
		if _, err := fmt.Fprintf(w, "%s %s: %s\n", l.icon, l.label, value); err != nil {
			return err
		}
	}
	return nil
}

// WriteHTML writes the card for Telegram's HTML parse mode. Empty fields are
// skipped.
func WriteHTML(w io.Writer, card internal.Card) error {
	for _, l := range cardLines(card) {
		if l.value == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s <b>%s:</b> %s\n", l.icon, l.label, html.EscapeString(l.value)); err != nil {
			return err
		}
	}
	return nil
}

func CardText(card internal.Card) string {
	var b strings.Builder
	_ = WriteText(&b, card)
	return b.String()
}
