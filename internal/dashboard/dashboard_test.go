package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkup/portal/internal/api"
	"linkup/portal/internal/auth"
)

type fakeSource struct {
	offres        api.Page[api.Offre]
	filter        api.OffreFilter
	candidatures  []api.Candidature
	internship    api.Suivi
	internshipErr error
	myOffres      []api.Offre
	conventions   []api.Convention
	stats         api.Stats
	statsErr      error
	students      []api.Suivi
	unread        int64
	unreadErr     error
}

func (f *fakeSource) PublicOffres(_ context.Context, filter api.OffreFilter) (api.Page[api.Offre], error) {
	f.filter = filter
	return f.offres, nil
}

func (f *fakeSource) MyCandidatures(context.Context) ([]api.Candidature, error) {
	return f.candidatures, nil
}

func (f *fakeSource) MyInternship(context.Context) (api.Suivi, error) {
	return f.internship, f.internshipErr
}

func (f *fakeSource) MyOffres(context.Context) ([]api.Offre, error) {
	return f.myOffres, nil
}

func (f *fakeSource) CompanyConventions(context.Context) ([]api.Convention, error) {
	return f.conventions, nil
}

func (f *fakeSource) Stats(context.Context) (api.Stats, error) {
	return f.stats, f.statsErr
}

func (f *fakeSource) MyStudents(context.Context) ([]api.Suivi, error) {
	return f.students, nil
}

func (f *fakeSource) UnreadCount(context.Context) (int64, error) {
	return f.unread, f.unreadErr
}

func TestLoadStudent(t *testing.T) {
	src := &fakeSource{
		offres:       api.Page[api.Offre]{Content: []api.Offre{{ID: 1, Title: "Stage Go"}}, TotalElements: 12},
		candidatures: []api.Candidature{{ID: 4, Status: api.StatusPending}},
		internship:   api.Suivi{ID: 9, Progress: api.ProgressOngoing},
		unread:       2,
	}

	got, err := LoadStudent(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.TotalOffres)
	assert.Len(t, got.LatestOffres, 1)
	assert.Len(t, got.Candidatures, 1)
	require.NotNil(t, got.Internship)
	assert.Equal(t, int64(9), got.Internship.ID)
	assert.Equal(t, int64(2), got.Unread)
	assert.Equal(t, "datePublication", src.filter.SortBy)
	assert.Equal(t, "DESC", src.filter.SortDirection)
}

func TestLoadStudentWithoutTutor(t *testing.T) {
	src := &fakeSource{internshipErr: &api.Error{StatusCode: 404}}

	got, err := LoadStudent(context.Background(), src)
	require.NoError(t, err)
	assert.Nil(t, got.Internship)
}

func TestUnreadFailureDoesNotFailDashboard(t *testing.T) {
	src := &fakeSource{students: []api.Suivi{{ID: 1}}, unreadErr: errors.New("down")}

	got, err := LoadTutor(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, got.Students, 1)
	assert.Zero(t, got.Unread)
}

func TestLoadAdminFailure(t *testing.T) {
	src := &fakeSource{statsErr: &api.Error{StatusCode: 500}}

	_, err := LoadAdmin(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load stats")
}

func TestLoadDispatchesOnRole(t *testing.T) {
	src := &fakeSource{
		myOffres:    []api.Offre{{ID: 1}},
		conventions: []api.Convention{{ID: 2}},
		stats:       api.Stats{TotalOffres: 3},
	}

	v, err := Load(context.Background(), src, auth.RoleCompany)
	require.NoError(t, err)
	company, ok := v.(Company)
	require.True(t, ok)
	assert.Len(t, company.Conventions, 1)

	v, err = Load(context.Background(), src, auth.RoleAdministration)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.(Admin).Stats.TotalOffres)

	_, err = Load(context.Background(), src, auth.Role("GUEST"))
	assert.Error(t, err)
}
