package corpus

import (
	"bufio"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/richardwhiteii/ccrecall/pkg/models"
)

// maxRecordBytes bounds a single transcript line during metadata extraction.
// Claude transcripts can carry multi-megabyte tool results on one line.
const maxRecordBytes = 4 * 1024 * 1024

// scanWorkers bounds parallel metadata extraction across session files.
const scanWorkers = 8

// ScannerConfig configures a Scanner.
type ScannerConfig struct {
	// Root is the corpus root (one encoded directory per project).
	Root string
	// MaxSessionBytes is the content size ceiling; larger transcripts are
	// truncated to MaxSessionLines leading lines.
	MaxSessionBytes int64
	MaxSessionLines int
	// Cache holds previously extracted metadata; nil disables caching.
	Cache *Cache
}

// Scanner enumerates projects and sessions under a corpus root. A missing
// root is not an error: scans return empty results.
type Scanner struct {
	root            string
	maxSessionBytes int64
	maxSessionLines int
	cache           *Cache
}

// NewScanner creates a Scanner for the given corpus root.
func NewScanner(cfg ScannerConfig) *Scanner {
	return &Scanner{
		root:            cfg.Root,
		maxSessionBytes: cfg.MaxSessionBytes,
		maxSessionLines: cfg.MaxSessionLines,
		cache:           cfg.Cache,
	}
}

// Root returns the corpus root directory.
func (s *Scanner) Root() string {
	return s.root
}

// ListProjects enumerates immediate subdirectories of the root as projects,
// sorted by most recent session activity.
func (s *Scanner) ListProjects() (models.ProjectListing, error) {
	listing := models.ProjectListing{Projects: []models.Project{}}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return listing, nil
		}
		return listing, err
	}

	var totalBytes int64
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(s.root, entry.Name())
		files, err := sessionFiles(dir)
		if err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Skipping unreadable project directory")
			continue
		}

		var lastUsed time.Time
		for _, f := range files {
			if info, err := os.Stat(f); err == nil && info.ModTime().After(lastUsed) {
				lastUsed = info.ModTime()
			}
		}

		size := dirSize(dir)
		project := models.Project{
			Path:         DecodePath(entry.Name()),
			SessionCount: len(files),
			TotalSizeMB:  roundTo2(float64(size) / (1024 * 1024)),
		}
		if !lastUsed.IsZero() {
			project.LastUsed = lastUsed.Format(time.RFC3339)
		}

		listing.Projects = append(listing.Projects, project)
		listing.TotalSessions += len(files)
		totalBytes += size
	}

	sort.Slice(listing.Projects, func(i, j int) bool {
		return listing.Projects[i].LastUsed > listing.Projects[j].LastUsed
	})

	listing.TotalProjects = len(listing.Projects)
	listing.TotalSizeGB = roundTo2(float64(totalBytes) / (1024 * 1024 * 1024))
	return listing, nil
}

// Sessions extracts metadata for every session in the corpus, optionally
// restricted to projects whose decoded path contains projectFilter.
// Unreadable sessions are logged and omitted, never fatal.
func (s *Scanner) Sessions(projectFilter string) ([]models.Session, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var (
		mu       sync.Mutex
		sessions []models.Session
	)
	g := new(errgroup.Group)
	g.SetLimit(scanWorkers)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		projectPath := DecodePath(entry.Name())
		if projectFilter != "" && !strings.Contains(projectPath, projectFilter) {
			continue
		}

		files, err := sessionFiles(filepath.Join(s.root, entry.Name()))
		if err != nil {
			log.Warn().Err(err).Str("project", projectPath).Msg("Skipping unreadable project directory")
			continue
		}

		for _, file := range files {
			file := file
			g.Go(func() error {
				session, err := s.extractSessionInfo(file, projectPath)
				if err != nil {
					log.Warn().Err(err).Str("file", file).Msg("Error reading session")
					return nil
				}
				mu.Lock()
				sessions = append(sessions, session)
				mu.Unlock()
				return nil
			})
		}
	}

	_ = g.Wait() // workers never return errors; failures are logged and skipped
	return sessions, nil
}

// RecentSessions returns sessions modified within the last `days` days,
// sorted by first-user-message timestamp descending.
func (s *Scanner) RecentSessions(days int, projectFilter string) ([]models.Session, error) {
	all, err := s.Sessions(projectFilter)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour).Unix()
	recent := all[:0]
	for _, session := range all {
		if session.ModTimeUnix >= cutoff {
			recent = append(recent, session)
		}
	}

	SortByTimestamp(recent)
	return recent, nil
}

// SortByTimestamp orders sessions newest-first. Sessions without a
// timestamp compare as the empty string and sort last.
func SortByTimestamp(sessions []models.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Timestamp > sessions[j].Timestamp
	})
}

// SessionContent reads a transcript for backend loading. Files above the
// size ceiling are truncated to the first MaxSessionLines lines; the loss
// is deliberate and only logged.
func (s *Scanner) SessionContent(session models.Session) (string, error) {
	info, err := os.Stat(session.FilePath)
	if err != nil {
		return "", err
	}

	if s.maxSessionBytes <= 0 || info.Size() <= s.maxSessionBytes {
		data, err := os.ReadFile(session.FilePath)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	log.Info().
		Str("session", session.ID).
		Int64("size_kb", info.Size()/1024).
		Int("max_lines", s.maxSessionLines).
		Msg("Session exceeds size ceiling, truncating")

	f, err := os.Open(session.FilePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)
	for i := 0; i < s.maxSessionLines && scanner.Scan(); i++ {
		sb.Write(scanner.Bytes())
		sb.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Str("session", session.ID).Msg("Truncated read stopped early")
	}
	return sb.String(), nil
}

// extractSessionInfo reads a transcript line by line and captures the
// summary, first user timestamp, and first assistant model. Lines that
// fail to parse are skipped.
func (s *Scanner) extractSessionInfo(path, projectPath string) (models.Session, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.Session{}, err
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(path, info.Size(), info.ModTime().Unix()); ok {
			return cached, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return models.Session{}, err
	}
	defer f.Close()

	var summary, timestamp, model string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record models.Record
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}

		switch record.Type {
		case "summary":
			if summary == "" {
				summary = record.Summary
			}
		case "user":
			if timestamp == "" {
				timestamp = record.Timestamp
			}
		case "assistant":
			if model == "" {
				model = record.Message.Model
			}
		}

		if summary != "" && timestamp != "" && model != "" {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		// Oversized or unreadable tail lines lose metadata, not the session.
		log.Warn().Err(err).Str("file", path).Msg("Metadata scan stopped early")
	}

	if summary == "" {
		summary = models.NoSummary
	}

	session := models.Session{
		ID:          strings.TrimSuffix(filepath.Base(path), SessionExt),
		Project:     projectPath,
		Summary:     summary,
		Timestamp:   timestamp,
		Model:       model,
		FilePath:    path,
		SizeBytes:   info.Size(),
		ModTimeUnix: info.ModTime().Unix(),
	}

	if s.cache != nil {
		s.cache.Put(session)
	}
	return session, nil
}

// sessionFiles lists transcript files directly under dir, skipping
// subdirectories (subagent transcripts).
func sessionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SessionExt) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// dirSize returns the aggregate size of all files under dir. Walk errors
// skip the offending entry rather than failing the listing.
func dirSize(dir string) int64 {
	var size int64
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
