package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Jeffrey0117/isnowfriend/internal/validator"
)

// LocationSearchRequest is a nearby-store query. Brand and OnlyInStock are
// caller-side display policies; the aggregator itself returns everything.
type LocationSearchRequest struct {
	Location    Coordinate
	Brand       StoreType
	HasBrand    bool
	OnlyInStock bool
}

func NewLocationSearchRequest(lat, lng, brand, onlyInStock string) (*LocationSearchRequest, error) {
	if lat == "" || lng == "" {
		return nil, fmt.Errorf("missing required params lat/lng")
	}
	latF, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat")
	}
	lngF, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lng")
	}
	req := &LocationSearchRequest{
		Location:    Coordinate{Lat: latF, Lng: lngF},
		OnlyInStock: onlyInStock == "1" || strings.EqualFold(onlyInStock, "true"),
	}
	if brand != "" {
		bt, ok := ParseStoreType(brand)
		if !ok {
			return nil, fmt.Errorf("unknown brand %q", brand)
		}
		req.Brand = bt
		req.HasBrand = true
	}
	return req, nil
}

func (r *LocationSearchRequest) Validate() error {
	var errs []string

	if err := validator.ValidateLatitude(r.Location.Lat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validator.ValidateLongitude(r.Location.Lng); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, ", "))
	}
	return nil
}

type KeywordSearchRequest struct {
	Keyword string
}

func NewKeywordSearchRequest(q string) (*KeywordSearchRequest, error) {
	kw, err := validator.ValidateKeyword(q)
	if err != nil {
		return nil, err
	}
	return &KeywordSearchRequest{Keyword: kw}, nil
}
