package service

import (
	"context"
	"strings"

	"example.com/outcry/internal/models"
)

// Address defaults for free text input
const (
	DefaultState   = "NSW"
	DefaultCountry = "Australia"
)

// DeriveAddress builds an address row. Structured details are stored as
// given. Free text becomes the formatted address and its last comma
// separated part is taken as the suburb.
func DeriveAddress(name, text string, details *AddressDetails) models.Address {
	if details != nil {
		formatted := details.FormattedAddress
		if formatted == "" {
			formatted = text
		}
		return models.Address{
			Name:             name,
			GooglePlaceID:    details.GooglePlaceID,
			FormattedAddress: formatted,
			StreetNumber:     details.StreetNumber,
			StreetName:       details.StreetName,
			Suburb:           details.Suburb,
			State:            details.State,
			Postcode:         details.Postcode,
			Country:          details.Country,
			Latitude:         details.Latitude,
			Longitude:        details.Longitude,
		}
	}

	suburb := ""
	if parts := strings.Split(text, ","); len(parts) > 1 {
		suburb = strings.TrimSpace(parts[len(parts)-1])
	}
	return models.Address{
		Name:             name,
		FormattedAddress: text,
		Suburb:           suburb,
		State:            DefaultState,
		Postcode:         "",
		Country:          DefaultCountry,
	}
}

func (s *service) ListAddresses(ctx context.Context) ([]*models.Address, error) {
	return s.repo.ListAddresses(ctx)
}

func (s *service) GetAddress(ctx context.Context, id uint) (*models.Address, error) {
	address, err := s.repo.FindAddressByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Address", id)
	}
	return address, nil
}

func (s *service) CreateAddress(ctx context.Context, in AddressInput) (*models.Address, error) {
	if strings.TrimSpace(in.Address) == "" && in.Details == nil {
		return nil, validationf("address or details is required")
	}
	address := DeriveAddress(in.Name, in.Address, in.Details)
	if err := s.repo.CreateAddress(ctx, &address); err != nil {
		return nil, err
	}
	return &address, nil
}
