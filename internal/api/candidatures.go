package api

import (
	"context"
	"net/http"
)

type applyRequest struct {
	OffreID     int64  `json:"offreId"`
	CoverLetter string `json:"lettreMotivation,omitempty"`
}

type rejectRequest struct {
	Comment string `json:"commentaire"`
}

func (c *Client) Apply(ctx context.Context, offreID int64, coverLetter string) (Candidature, error) {
	if offreID <= 0 {
		return Candidature{}, &ValidationError{Field: "offreId", Message: "offer is required"}
	}
	var out Candidature
	err := c.doJSON(ctx, http.MethodPost, "/api/candidatures", nil, applyRequest{OffreID: offreID, CoverLetter: coverLetter}, &out)
	return out, err
}

func (c *Client) Candidature(ctx context.Context, id int64) (Candidature, error) {
	var out Candidature
	err := c.doJSON(ctx, http.MethodGet, idPath("/api/candidatures/%d", id), nil, nil, &out)
	return out, err
}

func (c *Client) MyCandidatures(ctx context.Context) ([]Candidature, error) {
	var out []Candidature
	err := c.doJSON(ctx, http.MethodGet, "/api/candidatures/mes-candidatures", nil, nil, &out)
	return out, err
}

func (c *Client) CandidaturesForOffre(ctx context.Context, offreID int64) ([]Candidature, error) {
	var out []Candidature
	err := c.doJSON(ctx, http.MethodGet, idPath("/api/candidatures/offre/%d", offreID), nil, nil, &out)
	return out, err
}

func (c *Client) AcceptCandidature(ctx context.Context, id int64) (Candidature, error) {
	var out Candidature
	err := c.doJSON(ctx, http.MethodPut, idPath("/api/candidatures/%d/accepter", id), nil, nil, &out)
	return out, err
}

func (c *Client) RejectCandidature(ctx context.Context, id int64, comment string) (Candidature, error) {
	var out Candidature
	err := c.doJSON(ctx, http.MethodPut, idPath("/api/candidatures/%d/refuser", id), nil, rejectRequest{Comment: comment}, &out)
	return out, err
}

func (c *Client) WithdrawCandidature(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, idPath("/api/candidatures/%d", id), nil, nil, nil)
}
