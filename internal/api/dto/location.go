package dto

import "outlet-route-service/internal/domain"

type LocationResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Province    string             `json:"province"`
	City        string             `json:"city"`
	District    string             `json:"district"`
	Coordinates domain.Coordinates `json:"coordinates"`
	MapsURL     string             `json:"maps_url"`
	OpenTime    string             `json:"open_time,omitempty"`
	CloseTime   string             `json:"close_time,omitempty"`
}

type ListLocationsResponse struct {
	Count     int                `json:"count"`
	Locations []LocationResponse `json:"locations"`
}

func NewLocationResponse(l domain.Location) LocationResponse {
	res := LocationResponse{
		ID:          l.ID,
		Name:        l.Name,
		Province:    l.Province,
		City:        l.City,
		District:    l.District,
		Coordinates: l.Coordinates,
		MapsURL:     l.MapsLink(),
	}
	if l.Hours != nil {
		res.OpenTime = l.Hours.Open.String()
		res.CloseTime = l.Hours.Close.String()
	}
	return res
}
