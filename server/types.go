package server

import "github.com/sig-0/exchbot/storage/types"

type QuotesResponse struct {
	Results []*types.Quote `json:"results"`
}

type AdsResponse struct {
	Results []*types.Ad `json:"results"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
