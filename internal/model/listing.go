package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// AgencyListing is the public shape of a directory entry
type AgencyListing struct {
	ID                          uuid.UUID   `json:"id"`
	Name                        string      `json:"name"`
	Slug                        string      `json:"slug"`
	Description                 *string     `json:"description"`
	LogoURL                     *string     `json:"logo_url"`
	Website                     *string     `json:"website"`
	Phone                       *string     `json:"phone"`
	Email                       *string     `json:"email"`
	Headquarters                *string     `json:"headquarters"`
	IsActive                    bool        `json:"is_active"`
	IsClaimed                   bool        `json:"is_claimed"`
	IsUnion                     bool        `json:"is_union"`
	OffersPerDiem               bool        `json:"offers_per_diem"`
	ProfileCompletionPercentage int         `json:"profile_completion_percentage"`
	Trades                      []TradeRef  `json:"trades"`
	Regions                     []RegionRef `json:"regions"`
}

// TradeRef is a trade specialty attached to a listing
type TradeRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// RegionRef is a service-area state attached to a listing
type RegionRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
}

// AgencyRow is a raw agency row as returned by the store, with its join rows nested
type AgencyRow struct {
	ID                          uuid.UUID   `json:"id" db:"id"`
	Name                        string      `json:"name" db:"name"`
	Slug                        string      `json:"slug" db:"slug"`
	Description                 *string     `json:"description,omitempty" db:"description"`
	LogoURL                     *string     `json:"logo_url,omitempty" db:"logo_url"`
	Website                     *string     `json:"website,omitempty" db:"website"`
	Phone                       *string     `json:"phone,omitempty" db:"phone"`
	Email                       *string     `json:"email,omitempty" db:"email"`
	Headquarters                *string     `json:"headquarters,omitempty" db:"headquarters"`
	IsActive                    bool        `json:"is_active" db:"is_active"`
	IsClaimed                   bool        `json:"is_claimed" db:"is_claimed"`
	IsUnion                     bool        `json:"is_union" db:"is_union"`
	OffersPerDiem               bool        `json:"offers_per_diem" db:"offers_per_diem"`
	ProfileCompletionPercentage *int        `json:"profile_completion_percentage,omitempty" db:"profile_completion_percentage"`
	TradeJoins                  TradeJoins  `json:"agency_trades,omitempty" db:"agency_trades"`
	RegionJoins                 RegionJoins `json:"agency_regions,omitempty" db:"agency_regions"`
}

// TradeRow is a row of the trades table
type TradeRow struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
	Slug string    `json:"slug" db:"slug"`
}

// RegionRow is a row of the regions table
type RegionRow struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	StateCode string    `json:"state_code" db:"state_code"`
	Slug      string    `json:"slug" db:"slug"`
}

// TradeJoin is one agency_trades row with its trade eagerly loaded
type TradeJoin struct {
	Trade *TradeRow `json:"trade"`
}

// RegionJoin is one agency_regions row with its region eagerly loaded
type RegionJoin struct {
	Region *RegionRow `json:"region"`
}

// TradeJoins represents a JSON aggregate of agency_trades rows
type TradeJoins []TradeJoin

// Value implements driver.Valuer interface
func (j TradeJoins) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *TradeJoins) Scan(value interface{}) error {
	return scanJSON(value, j)
}

// RegionJoins represents a JSON aggregate of agency_regions rows
type RegionJoins []RegionJoin

// Value implements driver.Valuer interface
func (j RegionJoins) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *RegionJoins) Scan(value interface{}) error {
	return scanJSON(value, j)
}

func scanJSON(value interface{}, target interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, target)
	case string:
		return json.Unmarshal([]byte(v), target)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
}
