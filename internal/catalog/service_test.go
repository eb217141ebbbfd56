package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Load() (*Table, error) {
	args := m.Called()
	tbl, _ := args.Get(0).(*Table)
	return tbl, args.Error(1)
}

func newSampleService(t *testing.T) *Service {
	t.Helper()
	repo := new(mockRepository)
	repo.On("Load").Return(loadSample(t), nil)
	return NewService(repo)
}

func TestService_ArtistOptions(t *testing.T) {
	svc := newSampleService(t)

	got, err := svc.ArtistOptions()
	require.NoError(t, err)
	assert.Equal(t, AllArtists, got[0])
	assert.Equal(t, []string{"Double Exposure", "First Choice", "Inner Life", "Loleatta Holloway", "The Salsoul Orchestra"}, got[1:])
}

func TestService_YearOptions(t *testing.T) {
	svc := newSampleService(t)

	got, err := svc.YearOptions("Loleatta Holloway")
	require.NoError(t, err)
	assert.Equal(t, []int{1977, 1980}, got)

	got, err = svc.YearOptions("Nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_View(t *testing.T) {
	svc := newSampleService(t)

	got, err := svc.View(Selection{Artist: "Double Exposure"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1002, 1003}, ids(got))
}

func TestService_Counts(t *testing.T) {
	svc := newSampleService(t)

	all, err := svc.Counts(nil, FieldYear, ByKeyAsc)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	some, err := svc.Counts(&Selection{Artist: "The Salsoul Orchestra"}, FieldFormat, ByCountDesc)
	require.NoError(t, err)
	assert.Equal(t, []Count{{Key: "Vinyl, LP, Album", Count: 3}}, some)
}

func TestService_Top(t *testing.T) {
	svc := newSampleService(t)

	got, err := svc.Top(FieldInCollection, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1002, 1010}, ids(got))
}

func TestService_LoadError(t *testing.T) {
	loadErr := errors.Join(ErrDataUnavailable, errors.New("no such file"))
	repo := new(mockRepository)
	repo.On("Load").Return(NewTable(nil), loadErr)
	svc := NewService(repo)

	_, err := svc.View(Selection{Artist: AllArtists})
	assert.ErrorIs(t, err, ErrDataUnavailable)
	_, err = svc.ArtistOptions()
	assert.ErrorIs(t, err, ErrDataUnavailable)
	_, err = svc.YearOptions(AllArtists)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	_, err = svc.Top(FieldInCollection, 5)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	_, err = svc.Counts(nil, FieldYear, ByKeyAsc)
	assert.ErrorIs(t, err, ErrDataUnavailable)

	repo.AssertNumberOfCalls(t, "Load", 5)
}
