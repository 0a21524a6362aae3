package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL, Tokens: staticToken(token)})
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "ftp://host", "://bad"} {
		_, err := New(Options{BaseURL: raw})
		assert.Error(t, err, raw)
	}
}

func TestLoginSendsCredentialsWithoutToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body["email"])
		assert.Equal(t, "secret1", body["motDePasse"])

		_, _ = io.WriteString(w, `{"token":"T1","id":1,"email":"a@b.com","nom":"Dupont","prenom":"Jean","role":"ETUDIANT"}`)
	}, "")

	resp, err := c.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "T1", resp.Token)
	assert.Equal(t, "Dupont", resp.LastName)
	assert.Equal(t, "ETUDIANT", resp.Role)
}

func TestRequestsCarryBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `4`)
	}, "T1")

	n, err := c.UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestSetTokenSourceReplacesSource(t *testing.T) {
	var got atomic.Value
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[]`)
	}, "")

	c.SetTokenSource(staticToken("T2"))
	_, err := c.MyCandidatures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer T2", got.Load())
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"Identifiants invalides"}`, "Identifiants invalides"},
		{"validation errors", `{"errors":[{"defaultMessage":"email invalide"}]}`, "email invalide"},
		{"error field", `{"error":"Unauthorized"}`, "Unauthorized"},
		{"not json", `<html>oops</html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, tt.body)
			}, "")

			_, err := c.MyProfile(context.Background())
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, tt.want, apiErr.Message)
			assert.False(t, apiErr.Transport())
			assert.Equal(t, orFallback(tt.want), MessageOr(err, "fallback"))
		})
	}
}

func orFallback(s string) string {
	if s == "" {
		return "fallback"
	}
	return s
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: base})
	require.NoError(t, err)

	_, err = c.MyProfile(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Transport())
	assert.Equal(t, "fallback", MessageOr(err, "fallback"))
}

func TestUnauthorizedAndNotFound(t *testing.T) {
	status := http.StatusUnauthorized
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}, "")

	_, err := c.MyConventions(context.Background())
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))

	status = http.StatusNotFound
	_, err = c.MyInternship(context.Background())
	assert.True(t, IsNotFound(err))
}

func TestMalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"id":`)
	}, "")

	_, err := c.Offre(context.Background(), 3)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
}

func TestPublicOffresQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/offres/publiques", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "0", q.Get("page"))
		assert.Equal(t, "10", q.Get("size"))
		assert.Equal(t, "go", q.Get("search"))
		assert.Equal(t, "STAGE", q.Get("typeOffre"))
		assert.Equal(t, "datePublication", q.Get("sortBy"))
		assert.Equal(t, "DESC", q.Get("sortDirection"))
		assert.False(t, q.Has("dateDebutMin"))
		_, _ = io.WriteString(w, `{"content":[{"id":1,"titre":"Stage Go"}],"totalPages":1,"totalElements":1}`)
	}, "")

	page, err := c.PublicOffres(context.Background(), OffreFilter{
		Search: "go", Type: OfferTypeInternship, SortBy: "datePublication", SortDirection: "DESC", Page: -2,
	})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Stage Go", page.Content[0].Title)
	assert.Equal(t, int64(1), page.TotalElements)
}

func TestCreateOffreValidatesLocally(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { calls.Add(1) }, "T1")

	_, err := c.CreateOffre(context.Background(), Offre{Title: "x", Description: "y", Type: "CDI"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "typeOffre", verr.Field)
	assert.Zero(t, calls.Load())
}

func TestSignConventionPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/conventions/7/signer-entreprise", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":7,"signatureEntreprise":true}`)
	}, "T1")

	conv, err := c.SignConvention(context.Background(), 7, SignatoryCompany)
	require.NoError(t, err)
	assert.True(t, conv.SignedByCompany)
}

func TestConventionPDFReturnsBytes(t *testing.T) {
	pdf := []byte("%PDF-1.4 binary\x00\x01")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/conventions/5/pdf", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	}, "T1")

	got, err := c.ConventionPDF(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, pdf, got)
}

func TestValidateCV(t *testing.T) {
	ct, err := ValidateCV("cv.PDF", 1024)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)

	_, err = ValidateCV("cv.docx", MaxCVSize)
	assert.NoError(t, err)

	for _, tc := range []struct {
		name string
		size int64
	}{
		{"cv.txt", 10},
		{"cv.pdf", 0},
		{"cv.pdf", 6 << 20},
		{"cv", 10},
	} {
		_, err := ValidateCV(tc.name, tc.size)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, tc.name)
	}
}

func TestUploadCVFileRejectsOversizeWithoutRequest(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { calls.Add(1) }, "T1")

	path := filepath.Join(t.TempDir(), "cv.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(6<<20))
	require.NoError(t, f.Close())

	err = c.UploadCVFile(context.Background(), path)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, calls.Load())
}

func TestUploadCVSendsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cv/upload", r.URL.Path)
		assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		b, _ := io.ReadAll(file)
		assert.Equal(t, "cv.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		assert.Equal(t, "pdf-bytes", string(b))
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	}, "T1")

	require.NoError(t, c.UploadCV(context.Background(), "cv.pdf", []byte("pdf-bytes")))
}

func TestAssignTutorValidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(3), body["conventionId"])
		assert.Equal(t, int64(9), body["tuteurId"])
		_, _ = io.WriteString(w, `{"id":1,"conventionId":3,"tuteurId":9}`)
	}, "T1")

	_, err := c.AssignTutor(context.Background(), AssignTutor{ConventionID: 3})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	s, err := c.AssignTutor(context.Background(), AssignTutor{ConventionID: 3, TutorID: 9})
	require.NoError(t, err)
	assert.Equal(t, int64(9), s.TutorID)
}

func TestRegisterRequestValidate(t *testing.T) {
	valid := RegisterRequest{Email: "a@b.com", Password: "secret123", LastName: "Dupont", FirstName: "Jean", Role: "ETUDIANT"}
	require.NoError(t, valid.Validate())

	company := valid
	company.Role = "ENTREPRISE"
	assert.Error(t, company.Validate())

	short := valid
	short.Password = "1234567"
	assert.Error(t, short.Validate())

	badEmail := valid
	badEmail.Email = "not-an-email"
	assert.Error(t, badEmail.Validate())
}

func TestValidatePasswordChange(t *testing.T) {
	_, err := ValidatePasswordChange("old", "newpassword", "different")
	assert.Error(t, err)
	_, err = ValidatePasswordChange("old", "short", "short")
	assert.Error(t, err)
	change, err := ValidatePasswordChange("old", "newpassword", "newpassword")
	require.NoError(t, err)
	assert.Equal(t, "newpassword", change.New)
}
