package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind names a master-data collection. The string value doubles as the URL
// segment (/master/{kind}) and the value stored in the kind column.
type Kind string

const (
	KindGuide           Kind = "guides"
	KindCompany         Kind = "companies"
	KindNationality     Kind = "nationalities"
	KindProvince        Kind = "provinces"
	KindHotel           Kind = "hotels"
	KindRestaurant      Kind = "restaurants"
	KindShopPlace       Kind = "shop_places"
	KindDestination     Kind = "destinations"
	KindExpenseCategory Kind = "expense_categories"
	KindDiaryType       Kind = "diary_types"
)

// Kinds lists every master kind in display order.
var Kinds = []Kind{
	KindGuide, KindCompany, KindNationality, KindProvince, KindHotel,
	KindRestaurant, KindShopPlace, KindDestination, KindExpenseCategory,
	KindDiaryType,
}

// ParseKind validates s against the known kinds.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown master kind %q", ErrValidation, s)
}

// Status is the soft-delete flag shared by all master entities.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// MasterEntity is a row of any master-data collection (guide, company,
// nationality, province, hotel, ...). Kind-specific fields that carry no
// business rules (phone, address, default price) live in Attributes.
//
// Code is the ISO country code for nationalities and optional elsewhere.
type MasterEntity struct {
	ID             uuid.UUID         `json:"id"`
	Kind           Kind              `json:"kind"`
	Name           string            `json:"name"`
	Code           string            `json:"code,omitempty"`
	Status         Status            `json:"status"`
	SearchKeywords []string          `json:"searchKeywords"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// MasterFilter narrows a master list query.
// An empty Query matches everything; an empty Status matches both statuses.
type MasterFilter struct {
	Query  string
	Status Status
}
