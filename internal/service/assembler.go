package service

import "agencysearch/internal/model"

// ToAgencyListing flattens a store row into its public shape
func ToAgencyListing(row model.AgencyRow) model.AgencyListing {
	listing := model.AgencyListing{
		ID:            row.ID,
		Name:          row.Name,
		Slug:          row.Slug,
		Description:   row.Description,
		LogoURL:       row.LogoURL,
		Website:       row.Website,
		Phone:         row.Phone,
		Email:         row.Email,
		Headquarters:  row.Headquarters,
		IsActive:      row.IsActive,
		IsClaimed:     row.IsClaimed,
		IsUnion:       row.IsUnion,
		OffersPerDiem: row.OffersPerDiem,
		Trades:        make([]model.TradeRef, 0, len(row.TradeJoins)),
		Regions:       make([]model.RegionRef, 0, len(row.RegionJoins)),
	}
	if row.ProfileCompletionPercentage != nil {
		listing.ProfileCompletionPercentage = *row.ProfileCompletionPercentage
	}

	for _, j := range row.TradeJoins {
		if j.Trade == nil {
			continue
		}
		listing.Trades = append(listing.Trades, model.TradeRef{
			ID:   j.Trade.ID,
			Name: j.Trade.Name,
			Slug: j.Trade.Slug,
		})
	}
	for _, j := range row.RegionJoins {
		if j.Region == nil {
			continue
		}
		listing.Regions = append(listing.Regions, model.RegionRef{
			ID:   j.Region.ID,
			Name: j.Region.Name,
			Code: j.Region.StateCode,
		})
	}
	return listing
}

// AssembleListings maps rows in store order
func AssembleListings(rows []model.AgencyRow) []model.AgencyListing {
	out := make([]model.AgencyListing, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToAgencyListing(row))
	}
	return out
}

// NewPageMetadata describes a page cut from a result set of size total.
// hasMore is offset+limit < total, evaluated without overflow.
func NewPageMetadata(total, limit, offset int) model.PageMetadata {
	return model.PageMetadata{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset < total-limit,
	}
}
