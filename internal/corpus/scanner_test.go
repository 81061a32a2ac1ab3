package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/richardwhiteii/ccrecall/pkg/models"
)

// ScannerSuite is a test suite for corpus scanning over a temp directory.
type ScannerSuite struct {
	suite.Suite
	root    string
	scanner *Scanner
}

func (s *ScannerSuite) SetupTest() {
	s.root = s.T().TempDir()
	s.scanner = NewScanner(ScannerConfig{
		Root:            s.root,
		MaxSessionBytes: 500_000,
		MaxSessionLines: 500,
	})
}

func TestScannerSuite(t *testing.T) {
	suite.Run(t, new(ScannerSuite))
}

// writeSession writes a transcript with the given JSONL lines and returns
// its path.
func (s *ScannerSuite) writeSession(projectDir, id string, lines ...string) string {
	dir := filepath.Join(s.root, projectDir)
	s.Require().NoError(os.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, id+SessionExt)
	s.Require().NoError(os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func (s *ScannerSuite) TestListProjects_MissingRoot() {
	scanner := NewScanner(ScannerConfig{Root: filepath.Join(s.root, "does-not-exist")})

	listing, err := scanner.ListProjects()
	s.NoError(err)
	s.Empty(listing.Projects)
	s.Equal(0, listing.TotalProjects)
	s.Equal(0, listing.TotalSessions)
	s.Equal(0.0, listing.TotalSizeGB)
}

func (s *ScannerSuite) TestListProjects() {
	s.writeSession("-Users-richard-projects-foo", "aaa",
		`{"type":"summary","summary":"Fixed the build"}`)
	s.writeSession("-Users-richard-projects-foo", "bbb",
		`{"type":"user","timestamp":"2026-01-02T00:00:00Z"}`)
	s.writeSession("-Users-richard-projects-bar", "ccc",
		`{"type":"summary","summary":"Other work"}`)

	listing, err := s.scanner.ListProjects()
	s.NoError(err)
	s.Equal(2, listing.TotalProjects)
	s.Equal(3, listing.TotalSessions)

	byPath := make(map[string]models.Project)
	for _, p := range listing.Projects {
		byPath[p.Path] = p
	}
	s.Equal(2, byPath["/Users/richard/projects/foo"].SessionCount)
	s.Equal(1, byPath["/Users/richard/projects/bar"].SessionCount)
	s.NotEmpty(byPath["/Users/richard/projects/foo"].LastUsed)
}

func (s *ScannerSuite) TestSessions_MetadataExtraction() {
	s.writeSession("-home-dev-app", "session-1",
		`not json at all`,
		`{"type":"summary","summary":"Debugged the login flow"}`,
		`{"type":"summary","summary":"A later summary that must not win"}`,
		`{"type":"user","timestamp":"2026-03-01T10:00:00Z"}`,
		`{"type":"user","timestamp":"2026-03-01T11:00:00Z"}`,
		`{"type":"assistant","message":{"model":"claude-haiku-4-5-20251101"}}`,
		`{"type":"mystery","irrelevant":true}`)

	sessions, err := s.scanner.Sessions("")
	s.NoError(err)
	s.Require().Len(sessions, 1)

	session := sessions[0]
	s.Equal("session-1", session.ID)
	s.Equal("/home/dev/app", session.Project)
	s.Equal("Debugged the login flow", session.Summary)
	s.Equal("2026-03-01T10:00:00Z", session.Timestamp)
	s.Equal("claude-haiku-4-5-20251101", session.Model)
}

func (s *ScannerSuite) TestSessions_NoSummaryPlaceholder() {
	s.writeSession("-home-dev-app", "bare",
		`{"type":"user","timestamp":"2026-03-01T10:00:00Z"}`)

	sessions, err := s.scanner.Sessions("")
	s.NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal(models.NoSummary, sessions[0].Summary)
}

func (s *ScannerSuite) TestSessions_ProjectFilterSubstring() {
	s.writeSession("-home-dev-frontend", "f1", `{"type":"summary","summary":"css"}`)
	s.writeSession("-home-dev-backend", "b1", `{"type":"summary","summary":"sql"}`)

	sessions, err := s.scanner.Sessions("backend")
	s.NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal("b1", sessions[0].ID)
}

func (s *ScannerSuite) TestSessions_SkipsSubdirectories() {
	s.writeSession("-home-dev-app", "top", `{"type":"summary","summary":"main session"}`)
	nested := filepath.Join(s.root, "-home-dev-app", "subagents")
	s.Require().NoError(os.MkdirAll(nested, 0o755))
	s.Require().NoError(os.WriteFile(filepath.Join(nested, "nested.jsonl"), []byte("{}\n"), 0o644))

	sessions, err := s.scanner.Sessions("")
	s.NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal("top", sessions[0].ID)
}

func (s *ScannerSuite) TestSessionContent_SmallFileWhole() {
	path := s.writeSession("-home-dev-app", "small",
		`{"type":"summary","summary":"one"}`,
		`{"type":"user","timestamp":"t"}`)

	sessions, err := s.scanner.Sessions("")
	s.NoError(err)
	s.Require().Len(sessions, 1)

	content, err := s.scanner.SessionContent(sessions[0])
	s.NoError(err)

	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Equal(string(data), content)
}

func (s *ScannerSuite) TestSessionContent_TruncatesLargeFile() {
	scanner := NewScanner(ScannerConfig{
		Root:            s.root,
		MaxSessionBytes: 1024,
		MaxSessionLines: 10,
	})

	lines := make([]string, 100)
	for i := range lines {
		lines[i] = fmt.Sprintf(`{"type":"user","timestamp":"2026-01-01T00:00:%02dZ"}`, i)
	}
	s.writeSession("-home-dev-app", "big", lines...)

	sessions, err := scanner.Sessions("")
	s.NoError(err)
	s.Require().Len(sessions, 1)

	content, err := scanner.SessionContent(sessions[0])
	s.NoError(err)
	s.Equal(10, strings.Count(content, "\n"))
}

func (s *ScannerSuite) TestRecentSessions_DayWindowCutoff() {
	oldPath := s.writeSession("-home-dev-app", "old",
		`{"type":"user","timestamp":"2026-01-01T00:00:00Z"}`)
	s.writeSession("-home-dev-app", "fresh",
		`{"type":"user","timestamp":"2026-08-29T00:00:00Z"}`)

	stale := time.Now().Add(-30 * 24 * time.Hour)
	s.Require().NoError(os.Chtimes(oldPath, stale, stale))

	sessions, err := s.scanner.RecentSessions(7, "")
	s.NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal("fresh", sessions[0].ID)
}

func (s *ScannerSuite) TestRecentSessions_SortedNewestFirst() {
	s.writeSession("-home-dev-app", "older",
		`{"type":"user","timestamp":"2026-08-01T00:00:00Z"}`)
	s.writeSession("-home-dev-app", "newer",
		`{"type":"user","timestamp":"2026-08-20T00:00:00Z"}`)
	s.writeSession("-home-dev-app", "untimed",
		`{"type":"summary","summary":"no user record"}`)

	sessions, err := s.scanner.RecentSessions(365, "")
	s.NoError(err)
	s.Require().Len(sessions, 3)
	s.Equal("newer", sessions[0].ID)
	s.Equal("older", sessions[1].ID)
	// Missing timestamp sorts last in descending order
	s.Equal("untimed", sessions[2].ID)
}

func (s *ScannerSuite) TestSessions_UsesCache() {
	cache := NewCache()
	scanner := NewScanner(ScannerConfig{
		Root:            s.root,
		MaxSessionBytes: 500_000,
		MaxSessionLines: 500,
		Cache:           cache,
	})

	s.writeSession("-home-dev-app", "cached", `{"type":"summary","summary":"hello"}`)

	first, err := scanner.Sessions("")
	s.NoError(err)
	s.Require().Len(first, 1)
	s.Equal(1, cache.Len())

	second, err := scanner.Sessions("")
	s.NoError(err)
	s.Require().Len(second, 1)
	s.Equal(first[0], second[0])
}
