package catalog

// Service answers dashboard queries over the loaded release table.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Table returns the full release table.
func (s *Service) Table() (*Table, error) {
	return s.repo.Load()
}

// View returns the releases matching sel.
func (s *Service) View(sel Selection) (*Table, error) {
	t, err := s.repo.Load()
	if err != nil {
		return nil, err
	}
	return Select(t, sel), nil
}

// YearOptions returns the years selectable for artist.
func (s *Service) YearOptions(artist string) ([]int, error) {
	t, err := s.repo.Load()
	if err != nil {
		return nil, err
	}
	return Years(FilterByArtist(t, artist)), nil
}

// ArtistOptions returns AllArtists followed by every known artist.
func (s *Service) ArtistOptions() ([]string, error) {
	t, err := s.repo.Load()
	if err != nil {
		return nil, err
	}
	return append([]string{AllArtists}, Artists(t)...), nil
}

// Top returns the n highest ranked distinct releases of the whole table.
func (s *Service) Top(field Field, n int) (*Table, error) {
	t, err := s.repo.Load()
	if err != nil {
		return nil, err
	}
	return TopNByField(t, field, n)
}

// Counts groups the releases matching sel by field.
func (s *Service) Counts(sel *Selection, field Field, order Order) ([]Count, error) {
	t, err := s.repo.Load()
	if err != nil {
		return nil, err
	}
	if sel != nil {
		t = Select(t, *sel)
	}
	return CountByKey(t, field, order)
}
