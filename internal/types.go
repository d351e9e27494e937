package internal

// Record is one inventory row as it came from the upstream source. Keys are
// whatever the sheet header (or JSON payload) used; values are scalars.
type Record map[string]any

// Clone returns a shallow copy so callers can decorate a record without
// touching the catalog snapshot.
func (r Record) Clone() Record {
	out := make(Record, len(r)+2)
	for k, v := range r {
		out[k] = v
	}
	return out
}

type CanonicalField string

const (
	FieldCode         CanonicalField = "code"
	FieldName         CanonicalField = "name"
	FieldType         CanonicalField = "type"
	FieldPartNumber   CanonicalField = "partNumber"
	FieldOEMNumber    CanonicalField = "oemNumber"
	FieldQuantity     CanonicalField = "quantity"
	FieldPrice        CanonicalField = "price"
	FieldCurrency     CanonicalField = "currency"
	FieldManufacturer CanonicalField = "manufacturer"
	FieldImageURL     CanonicalField = "imageUrl"
)

// CanonicalFields lists every canonical field in display order.
var CanonicalFields = []CanonicalField{
	FieldCode,
	FieldName,
	FieldType,
	FieldPartNumber,
	FieldOEMNumber,
	FieldQuantity,
	FieldPrice,
	FieldCurrency,
	FieldManufacturer,
	FieldImageURL,
}

// Sheet column names used by the SAP export.
const (
	ColCode         = "код"
	ColName         = "наименование"
	ColType         = "тип"
	ColPartNumber   = "парт номер"
	ColOEMPart      = "oem парт номер"
	ColOEM          = "oem"
	ColManufacturer = "изготовитель"
	ColQuantity     = "количество"
	ColPrice        = "цена"
	ColCurrency     = "валюта"
	ColImage        = "image"
	ColImageURL     = "image_url"
)

type Card struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	PartNumber   string `json:"partNumber"`
	OEMNumber    string `json:"oemNumber"`
	Quantity     string `json:"quantity"`
	Price        string `json:"price"`
	Currency     string `json:"currency"`
	Manufacturer string `json:"manufacturer"`
	ImageURL     string `json:"imageUrl"`
}

type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleBlocked Role = "blocked"
)

type UserRow struct {
	UserID int64
	Role   Role
}

type IssueRequest struct {
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Code    string `json:"code"`
	Qty     string `json:"qty"`
	Comment string `json:"comment"`
}

type IssueRow struct {
	ID        string  `json:"id"`
	CreatedAt string  `json:"createdAt"`
	UserID    int64   `json:"userId"`
	UserName  string  `json:"userName"`
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Code      string  `json:"code"`
	Qty       float64 `json:"qty"`
	Comment   string  `json:"comment"`
}
