// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jkariuki/pamoja/internal/models"
)

const profilesHeader = "__id__,userId,userName,age,country,language,aboutMe,sex,seeking,relationshipGoals,subscribed,subscribedEliteOne,subscribedEliteThree,subscribedEliteSix,subscribedEliteTwelve"

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// writeExport writes a complete CSV export; overrides replaces individual
// file contents.
func writeExport(t *testing.T, dir string, overrides map[string]string) {
	t.Helper()

	files := map[string]string{
		"Profiles.csv": profilesHeader + "\n" +
			"p1,u1,Asha,30,Kenya,Swahili,Love football,female,male,long-term,true,false,false,false,false\n" +
			"p2,u2,Juma,31,Kenya,Swahili,Soccer fan,male,female,long-term,false,true,false,false,false\n",
		"LikedUsers.csv":    "userId,__id__\nu1,p2\n",
		"MatchedUsers.csv":  "userId,__id__\nu2,p1\n",
		"BlockedUsers.csv":  "__id__\n",
		"DeclinedUsers.csv": "__id__\n",
		"DeletedUsers.csv":  "__id__\n",
		"ReportedUsers.csv": "__id__\n",
	}
	for name, content := range overrides {
		files[name] = content
	}
	for name, content := range files {
		writeFile(t, dir, name, content)
	}
}

func newTestLoader(dir string) *Loader {
	cfg := DefaultConfig()
	cfg.Dir = dir
	return NewLoader(cfg, zerolog.Nop())
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, nil)

	data, stats, err := newTestLoader(dir).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(data.Profiles) != 2 {
		t.Fatalf("profiles = %d, want 2", len(data.Profiles))
	}
	p := data.Profiles[0]
	if p.ProfileID != "p1" || p.UserID != "u1" || p.Age != 30 {
		t.Errorf("first profile = %+v", p)
	}
	if !p.Subscribed || p.SubscribedEliteOne {
		t.Errorf("subscription flags wrong: %+v", p)
	}

	if len(data.Interactions) != 2 {
		t.Fatalf("interactions = %d, want 2", len(data.Interactions))
	}
	kinds := map[models.InteractionKind]int{}
	for _, r := range data.Interactions {
		kinds[r.Kind]++
	}
	if kinds[models.InteractionLiked] != 1 || kinds[models.InteractionMatched] != 1 {
		t.Errorf("interaction kinds = %v", kinds)
	}

	if stats.Profiles != 2 || stats.Liked != 1 || stats.Matched != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestLoaderMissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, map[string]string{
		"Profiles.csv": "onlyOneColumn\nx\n",
	})

	_, _, err := newTestLoader(dir).Load()
	if err == nil {
		t.Fatal("expected error for missing required columns")
	}
	if !strings.Contains(err.Error(), "missing required column") {
		t.Errorf("error = %v, want missing-column message", err)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, nil)
	if err := os.Remove(filepath.Join(dir, "MatchedUsers.csv")); err != nil {
		t.Fatal(err)
	}

	if _, _, err := newTestLoader(dir).Load(); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoaderSkipsBadRows(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, map[string]string{
		"Profiles.csv": profilesHeader + "\n" +
			"p1,u1,Asha,30,Kenya,Swahili,Hi,female,male,long-term,true,false,false,false,false\n" +
			"p2,u2,Bad,notanage,Kenya,Swahili,Hi,male,female,long-term,false,false,false,false,false\n" +
			",u3,NoID,25,Kenya,Swahili,Hi,male,female,long-term,false,false,false,false,false\n",
	})

	data, stats, err := newTestLoader(dir).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(data.Profiles) != 1 {
		t.Errorf("profiles = %d, want 1", len(data.Profiles))
	}
	if stats.SkippedRows != 2 {
		t.Errorf("SkippedRows = %d, want 2", stats.SkippedRows)
	}
}

func TestLoaderDeduplicatesProfiles(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, map[string]string{
		"Profiles.csv": profilesHeader + "\n" +
			"p1,u1,Asha,30,Kenya,Swahili,Hi,female,male,long-term,true,false,false,false,false\n" +
			"p1,u1,Asha,30,Kenya,Swahili,Hi,female,male,long-term,true,false,false,false,false\n",
	})

	data, stats, err := newTestLoader(dir).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(data.Profiles) != 1 {
		t.Errorf("profiles = %d, want 1 after dedupe", len(data.Profiles))
	}
	if stats.DuplicateProfiles != 1 {
		t.Errorf("DuplicateProfiles = %d, want 1", stats.DuplicateProfiles)
	}
}

func TestLoaderFillsUnknown(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, map[string]string{
		"Profiles.csv": profilesHeader + "\n" +
			"p1,u1,Asha,30,,,Hi,female,male,,true,false,false,false,false\n",
	})

	data, _, err := newTestLoader(dir).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := data.Profiles[0]
	if p.Country != models.Unknown || p.Language != models.Unknown || p.RelationshipGoals != models.Unknown {
		t.Errorf("empty categoricals not filled with sentinel: %+v", p)
	}
}

func TestLoaderExclusions(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, map[string]string{
		"BlockedUsers.csv":  "__id__\npb\n",
		"DeclinedUsers.csv": "__id__\npd\n",
		"DeletedUsers.csv":  "__id__\npx\n",
		"ReportedUsers.csv": "__id__\npr\n",
	})

	data, stats, err := newTestLoader(dir).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, id := range []string{"pb", "pd", "px", "pr"} {
		if !data.Exclusions.Contains(id) {
			t.Errorf("exclusions missing %s", id)
		}
	}
	if stats.Excluded != 4 {
		t.Errorf("Excluded = %d, want 4", stats.Excluded)
	}
}

func TestLoaderBoolSpellings(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, map[string]string{
		"Profiles.csv": profilesHeader + "\n" +
			"p1,u1,Asha,30,Kenya,Swahili,Hi,female,male,long-term,True,1,FALSE,0,false\n",
	})

	data, _, err := newTestLoader(dir).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := data.Profiles[0]
	if !p.Subscribed || !p.SubscribedEliteOne {
		t.Errorf("True/1 should parse as true: %+v", p)
	}
	if p.SubscribedEliteThree || p.SubscribedEliteSix || p.SubscribedEliteTwelve {
		t.Errorf("FALSE/0/false should parse as false: %+v", p)
	}
}
