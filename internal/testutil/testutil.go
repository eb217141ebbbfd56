package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleCSV is a small scrape of the label discography. It contains a
// duplicate (title, year) pair, a release without cover art, malformed and
// partial stats blobs, a release without artist or year, and one row with an
// invalid ID that the loader must skip.
const SampleCSV = `ID,Catno,Artist,Release Title,Year,Format,Thumb,Stats
1001,SZ 2002,The Salsoul Orchestra,The Salsoul Orchestra,1975,"Vinyl, LP, Album",https://i.discogs.com/a.jpg,"{'community': {'in_wantlist': 120, 'in_collection': 850}}"
1002,SG 101,Double Exposure,Ten Percent,1976,"Vinyl, 12"", 33 ⅓ RPM",https://i.discogs.com/b.jpg,"{'community': {'in_wantlist': 300, 'in_collection': 1200}}"
1003,SG 101,Double Exposure,Ten Percent,1976,"Vinyl, 12""",https://i.discogs.com/c.jpg,"{'community': {'in_wantlist': 10, 'in_collection': 50}}"
1004,SZ 2004,The Salsoul Orchestra,Nice 'N' Naasty,1976,"Vinyl, LP, Album",,"{'community': {'in_wantlist': 90, 'in_collection': 700}}"
1005,SG 207,Loleatta Holloway,Hit And Run,1977,"Vinyl, 12""",https://i.discogs.com/e.jpg,not a dict
1006,SG 345,Inner Life,I Like It Like That,1981,"Vinyl, 12""",https://i.discogs.com/f.jpg,"{'community': {'in_wantlist': 45}}"
1007,SA 8500,First Choice,Hold Your Horses,1979,"Vinyl, LP, Album",https://i.discogs.com/g.jpg,
1008,SA 8503,,Salsoul Disco Sampler,,"Vinyl, LP, Compilation",https://i.discogs.com/h.jpg,"{'community': {'in_wantlist': 5, 'in_collection': 20}}"
1009,SZ 2008,The Salsoul Orchestra,Magic Journey,1977,"Vinyl, LP, Album",https://i.discogs.com/i.jpg,"{'community': {'in_wantlist': 60, 'in_collection': 400}}"
abc,X 1,Broken Row,Bad ID,1980,LP,,{}
1010,SG 300,Loleatta Holloway,Love Sensation,1980,"Vinyl, 12""",https://i.discogs.com/j.jpg,"{'community': {'in_wantlist': 500, 'in_collection': 1200}}"
`

// SampleRows is the number of valid releases in SampleCSV.
const SampleRows = 10

// WriteSampleCSV writes SampleCSV into a temporary directory and returns its path.
func WriteSampleCSV(t testing.TB) string {
	t.Helper()
	return WriteFile(t, "releases.csv", SampleCSV)
}

// WriteFile writes content to name inside a temporary directory.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}
