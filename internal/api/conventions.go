package api

import (
	"context"
	"fmt"
	"net/http"
)

// Signatory is the party signing a convention.
type Signatory string

const (
	SignatoryStudent Signatory = "etudiant"
	SignatoryCompany Signatory = "entreprise"
	SignatoryAdmin   Signatory = "admin"
)

func ParseSignatory(s string) (Signatory, error) {
	switch Signatory(s) {
	case SignatoryStudent, SignatoryCompany, SignatoryAdmin:
		return Signatory(s), nil
	}
	return "", fmt.Errorf("unknown signatory %q", s)
}

func (c *Client) Conventions(ctx context.Context) ([]Convention, error) {
	return c.conventionList(ctx, "/api/conventions")
}

func (c *Client) MyConventions(ctx context.Context) ([]Convention, error) {
	return c.conventionList(ctx, "/api/conventions/mes-conventions")
}

func (c *Client) StudentConventions(ctx context.Context) ([]Convention, error) {
	return c.conventionList(ctx, "/api/conventions/etudiant")
}

func (c *Client) CompanyConventions(ctx context.Context) ([]Convention, error) {
	return c.conventionList(ctx, "/api/conventions/entreprise")
}

func (c *Client) conventionList(ctx context.Context, p string) ([]Convention, error) {
	var out []Convention
	err := c.doJSON(ctx, http.MethodGet, p, nil, nil, &out)
	return out, err
}

func (c *Client) Convention(ctx context.Context, id int64) (Convention, error) {
	var out Convention
	err := c.doJSON(ctx, http.MethodGet, idPath("/api/conventions/%d", id), nil, nil, &out)
	return out, err
}

func (c *Client) SignConvention(ctx context.Context, id int64, as Signatory) (Convention, error) {
	if _, err := ParseSignatory(string(as)); err != nil {
		return Convention{}, &ValidationError{Field: "signatory", Message: err.Error()}
	}
	var out Convention
	p := fmt.Sprintf("/api/conventions/%d/signer-%s", id, as)
	err := c.doJSON(ctx, http.MethodPut, p, nil, nil, &out)
	return out, err
}

func (c *Client) GenerateConventionPDF(ctx context.Context, id int64) (Convention, error) {
	var out Convention
	err := c.doJSON(ctx, http.MethodPost, idPath("/api/conventions/%d/generer-pdf", id), nil, nil, &out)
	return out, err
}

// ConventionPDF returns the raw PDF bytes.
func (c *Client) ConventionPDF(ctx context.Context, id int64) ([]byte, error) {
	return c.getBytes(ctx, idPath("/api/conventions/%d/pdf", id))
}

func (c *Client) ArchiveConvention(ctx context.Context, id int64) (Convention, error) {
	var out Convention
	err := c.doJSON(ctx, http.MethodPut, idPath("/api/conventions/%d/archiver", id), nil, nil, &out)
	return out, err
}
