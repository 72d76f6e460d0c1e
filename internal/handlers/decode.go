package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/GregMSThompson/kisanmate-backend/internal/dto"
	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON request body into v. Malformed bodies are reported
// as validation errors so they map to 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.NewValidationError("request body is required")
		}
		return errs.NewValidationError("invalid request body")
	}
	return nil
}

func parseReportQuery(r *http.Request) (dto.ReportQuery, error) {
	var q dto.ReportQuery
	month, err := optionalInt(r, "month")
	if err != nil {
		return q, err
	}
	year, err := optionalInt(r, "year")
	if err != nil {
		return q, err
	}
	q.Month, q.Year = month, year
	return q, nil
}

func optionalInt(r *http.Request, key string) (*int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errs.NewValidationError(key + " must be a number")
	}
	return &n, nil
}
