package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rewired-gh/quantumscout/internal/models"
)

func mustStorage(t *testing.T, maxAge time.Duration, maxEntries int) *Storage {
	t.Helper()
	s, err := New(":memory:", maxAge, maxEntries)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testMatches() []models.Match {
	return []models.Match{
		{
			Key:         "2024vafal_qm1",
			EventKey:    "2024vafal",
			CompLevel:   "qm",
			MatchNumber: 1,
			Alliances: models.Alliances{
				Red:  models.AllianceScore{Score: 55, TeamKeys: []string{"frc2363", "frc1731", "frc2421"}},
				Blue: models.AllianceScore{Score: 40, TeamKeys: []string{"frc1", "frc2", "frc3"}},
			},
		},
	}
}

func TestStorage_PutAndGetMatches(t *testing.T) {
	s := mustStorage(t, time.Hour, 0)

	if err := s.PutMatches("frc2363", "2024vafal", testMatches()); err != nil {
		t.Fatalf("PutMatches failed: %v", err)
	}

	matches, ok, err := s.GetMatches("frc2363", "2024vafal")
	if err != nil {
		t.Fatalf("GetMatches failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected cache hit")
	}
	if len(matches) != 1 || matches[0].Alliances.Red.Score != 55 {
		t.Errorf("Unexpected matches: %+v", matches)
	}

	_, ok, err = s.GetMatches("frc2363", "2024vabla")
	if err != nil {
		t.Fatalf("GetMatches failed: %v", err)
	}
	if ok {
		t.Error("Expected cache miss for another event")
	}
}

func TestStorage_PutReplacesEntry(t *testing.T) {
	s := mustStorage(t, 0, 0)

	if err := s.PutMatches("frc2363", "2024vafal", testMatches()); err != nil {
		t.Fatalf("PutMatches failed: %v", err)
	}
	if err := s.PutMatches("frc2363", "2024vafal", nil); err != nil {
		t.Fatalf("PutMatches failed: %v", err)
	}

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 entry, got %d", n)
	}

	matches, ok, _ := s.GetMatches("frc2363", "2024vafal")
	if !ok || len(matches) != 0 {
		t.Errorf("Expected replaced empty entry, got ok=%v matches=%v", ok, matches)
	}
}

func TestStorage_ExpiredEntryIsMiss(t *testing.T) {
	s := mustStorage(t, time.Hour, 0)
	now := time.Now()
	s.now = func() time.Time { return now.Add(-2 * time.Hour) }

	if err := s.PutMatches("frc2363", "2024vafal", testMatches()); err != nil {
		t.Fatalf("PutMatches failed: %v", err)
	}

	s.now = func() time.Time { return now }
	_, ok, err := s.GetMatches("frc2363", "2024vafal")
	if err != nil {
		t.Fatalf("GetMatches failed: %v", err)
	}
	if ok {
		t.Error("Expected expired entry to be a miss")
	}
}

func TestStorage_Rotate(t *testing.T) {
	s := mustStorage(t, time.Hour, 2)
	now := time.Now()

	entries := []struct {
		team string
		age  time.Duration
	}{
		{"frc1", 3 * time.Hour}, // expired
		{"frc2", 30 * time.Minute},
		{"frc3", 20 * time.Minute},
		{"frc4", 10 * time.Minute},
	}
	for _, e := range entries {
		at := now.Add(-e.age)
		s.now = func() time.Time { return at }
		if err := s.PutMatches(e.team, "2024vafal", testMatches()); err != nil {
			t.Fatalf("PutMatches failed: %v", err)
		}
	}
	s.now = func() time.Time { return now }

	if err := s.Rotate(); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 entries after rotation, got %d", n)
	}
	if _, ok, _ := s.GetMatches("frc2", "2024vafal"); ok {
		t.Error("Expected oldest surviving entry to be rotated out")
	}
	if _, ok, _ := s.GetMatches("frc4", "2024vafal"); !ok {
		t.Error("Expected newest entry to remain")
	}
}

func TestStorage_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "matches.db")
	s, err := New(path, 0, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.PutMatches("frc2363", "2024vafal", testMatches()); err != nil {
		t.Fatalf("PutMatches failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := New(path, 0, 0)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	if _, ok, _ := reopened.GetMatches("frc2363", "2024vafal"); !ok {
		t.Error("Expected entry to survive reopen")
	}
}
