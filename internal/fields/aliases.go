package fields

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"partsbot/internal"
)

// AliasTable maps each canonical field to the raw keys that may carry it,
// most trusted first.
type AliasTable map[internal.CanonicalField][]string

func DefaultAliases() AliasTable {
	return AliasTable{
		internal.FieldCode:         {"код", "code", "Код", "code_no"},
		internal.FieldName:         {"наименование", "name", "Наименование", "title"},
		internal.FieldType:         {"тип", "type", "Тип"},
		internal.FieldPartNumber:   {"парт номер", "part", "part_number", "partNumber", "Парт номер", "парт_номер"},
		internal.FieldOEMNumber:    {"oem парт номер", "oem_part", "oemNumber", "oem_number", "OEM парт номер"},
		internal.FieldQuantity:     {"количество", "qty", "quantity", "Количество", "остаток", "stock"},
		internal.FieldPrice:        {"цена", "price", "Цена"},
		internal.FieldCurrency:     {"валюта", "currency", "Валюта"},
		internal.FieldManufacturer: {"изготовитель", "manufacturer", "mfg", "Изготовитель", "производитель"},
		internal.FieldImageURL:     {"image_url", "image", "imageUrl", "фото", "photo"},
	}
}

// Keys returns the alias list for field. The slice is shared; do not modify.
func (t AliasTable) Keys(field internal.CanonicalField) []string {
	return t[field]
}

func (t AliasTable) Resolve(record internal.Record, field internal.CanonicalField, def string) string {
	return ResolveField(record, t[field], def)
}

// With returns a copy of t where every field present in override has its alias
// list replaced. Lists are deduplicated keeping first occurrence.
func (t AliasTable) With(override AliasTable) AliasTable {
	out := make(AliasTable, len(t))
	for field, keys := range t {
		out[field] = dedupe(keys)
	}
	for field, keys := range override {
		out[field] = dedupe(keys)
	}
	return out
}

// LoadAliases reads a JSON object of canonical field -> alias list and merges
// it over the defaults. An empty path yields the defaults.
func LoadAliases(path string) (AliasTable, error) {
	base := DefaultAliases()
	if strings.TrimSpace(path) == "" {
		return base.With(nil), nil
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aliases: %w", err)
	}
	var raw map[string][]string
	if err := json.Unmarshal(blob, &raw); err != nil {
		return nil, fmt.Errorf("parse aliases %s: %w", path, err)
	}

	override := AliasTable{}
	for name, keys := range raw {
		field := internal.CanonicalField(name)
		if !isCanonical(field) {
			return nil, fmt.Errorf("parse aliases %s: unknown field %q", path, name)
		}
		override[field] = keys
	}
	return base.With(override), nil
}

func isCanonical(field internal.CanonicalField) bool {
	for _, f := range internal.CanonicalFields {
		if f == field {
			return true
		}
	}
	return false
}

func dedupe(keys []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
