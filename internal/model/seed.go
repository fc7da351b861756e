package model

import "github.com/google/uuid"

// AgencyTrade is a row of the agency_trades join table
type AgencyTrade struct {
	AgencyID uuid.UUID `json:"agency_id" db:"agency_id"`
	TradeID  uuid.UUID `json:"trade_id" db:"trade_id"`
}

// AgencyRegion is a row of the agency_regions join table
type AgencyRegion struct {
	AgencyID uuid.UUID `json:"agency_id" db:"agency_id"`
	RegionID uuid.UUID `json:"region_id" db:"region_id"`
}

// Seed is the fixture format loaded by the in-memory store. Agency rows in a
// seed carry no nested joins; those come from the join tables.
type Seed struct {
	Agencies      []AgencyRow    `json:"agencies"`
	Trades        []TradeRow     `json:"trades"`
	Regions       []RegionRow    `json:"regions"`
	AgencyTrades  []AgencyTrade  `json:"agency_trades"`
	AgencyRegions []AgencyRegion `json:"agency_regions"`
}
