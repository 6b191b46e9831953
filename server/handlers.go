package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sig-0/exchbot/convert"
	"github.com/sig-0/exchbot/refresh"
	"github.com/sig-0/exchbot/storage"
)

// operatorHeader carries the caller identity for gated endpoints
const operatorHeader = "X-Operator-ID"

var (
	errUnableToFetchRates = errors.New("unable to fetch rates")
	errUnableToFetchAds   = errors.New("unable to fetch ads")
	errUnableToConvert    = errors.New("unable to convert")
	errUnableToRefresh    = errors.New("unable to refresh rates")

	errUnknownPlatform = errors.New("unknown platform")
	errInvalidPlatform = errors.New("invalid platform")
	errInvalidAmount   = errors.New("invalid amount")
	errMissingOperator = errors.New("missing operator identity")
	errNotPermitted    = errors.New("caller is not permitted to refresh rates")
)

func (s *Server) Rates(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.storage.ListQuotes(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch quotes",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	resp := &QuotesResponse{
		Results: quotes,
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) RateForPlatform(w http.ResponseWriter, r *http.Request) {
	platform, err := parsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	quote, err := s.storage.QuoteByPlatform(r.Context(), platform)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, errUnknownPlatform)

			return
		}

		s.logger.Debug(
			"unable to fetch quote",
			"platform", platform,
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	var (
		symbolParam = chi.URLParam(r, "symbol")
		amountParam = r.URL.Query().Get("amount")
	)

	platform, err := parsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the amount (the engine expects a numeric value)
	amount, err := strconv.ParseFloat(strings.TrimSpace(amountParam), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidAmount)

		return
	}

	result, err := s.engine.Convert(r.Context(), platform, symbolParam, amount)

	switch {
	case errors.Is(err, convert.ErrUnknownPlatform):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, convert.ErrUnsupportedCurrency):
		writeError(w, http.StatusBadRequest, err)
	case err != nil:
		s.logger.Debug(
			"unable to convert",
			"platform", platform,
			"err", err,
		)

		writeError(w, http.StatusInternalServerError, errUnableToConvert)
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) Ads(w http.ResponseWriter, r *http.Request) {
	ads, err := s.storage.ListAds(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch ads",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchAds,
		)

		return
	}

	resp := &AdsResponse{
		Results: ads,
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	callerID, err := parseOperatorID(r.Header.Get(operatorHeader))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	report, err := s.refresher.Refresh(r.Context(), callerID)
	if err != nil {
		if errors.Is(err, refresh.ErrPermissionDenied) {
			writeError(w, http.StatusForbidden, errNotPermitted)

			return
		}

		s.logger.Debug(
			"unable to refresh rates",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToRefresh,
		)

		return
	}

	writeJSON(w, http.StatusOK, report)
}

func parsePlatform(v string) (string, error) {
	s := strings.TrimSpace(v)
	if s == "" {
		return "", errInvalidPlatform
	}

	return s, nil
}

func parseOperatorID(v string) (int64, error) {
	s := strings.TrimSpace(v)
	if s == "" {
		return 0, errMissingOperator
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errMissingOperator
	}

	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
