package api

import (
	"context"
	"net/http"
)

func (c *Client) AssignTutor(ctx context.Context, req AssignTutor) (Suivi, error) {
	if err := req.Validate(); err != nil {
		return Suivi{}, err
	}
	var out Suivi
	err := c.doJSON(ctx, http.MethodPost, "/api/suivis/assigner-tuteur", nil, req, &out)
	return out, err
}

func (c *Client) Suivis(ctx context.Context) ([]Suivi, error) {
	var out []Suivi
	err := c.doJSON(ctx, http.MethodGet, "/api/suivis", nil, nil, &out)
	return out, err
}

func (c *Client) Suivi(ctx context.Context, id int64) (Suivi, error) {
	var out Suivi
	err := c.doJSON(ctx, http.MethodGet, idPath("/api/suivis/%d", id), nil, nil, &out)
	return out, err
}

func (c *Client) MyStudents(ctx context.Context) ([]Suivi, error) {
	var out []Suivi
	err := c.doJSON(ctx, http.MethodGet, "/api/suivis/mes-etudiants", nil, nil, &out)
	return out, err
}

// MyInternship returns the tracking record of the logged-in student. A
// student without an assigned tutor gets a 404 from the API.
func (c *Client) MyInternship(ctx context.Context) (Suivi, error) {
	var out Suivi
	err := c.doJSON(ctx, http.MethodGet, "/api/suivis/mon-stage", nil, nil, &out)
	return out, err
}

func (c *Client) UpdateProgress(ctx context.Context, id int64, upd ProgressUpdate) (Suivi, error) {
	switch upd.Progress {
	case ProgressOngoing, ProgressDone, ProgressStruggling:
	default:
		return Suivi{}, &ValidationError{Field: "etatAvancement", Message: "unknown progress state"}
	}
	var out Suivi
	err := c.doJSON(ctx, http.MethodPut, idPath("/api/suivis/%d/avancement", id), nil, upd, &out)
	return out, err
}
