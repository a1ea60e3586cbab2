// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jkariuki/pamoja/internal/matchmaker"
	"github.com/jkariuki/pamoja/internal/models"
)

// Profile CSV column names. The export schema is fixed; a file missing any
// of these fails the load.
var profileColumns = []string{
	"__id__", "userId", "userName", "age", "country", "language",
	"aboutMe", "sex", "seeking", "relationshipGoals", "subscribed",
	"subscribedEliteOne", "subscribedEliteThree", "subscribedEliteSix",
	"subscribedEliteTwelve",
}

// Interaction and exclusion CSV column names.
var (
	interactionColumns = []string{"userId", "__id__"}
	exclusionColumns   = []string{"__id__"}
)

// Config names the CSV files of one data export.
type Config struct {
	// Dir is the directory holding the CSV files.
	Dir string `json:"dir" koanf:"dir" validate:"required"`

	ProfilesFile string `json:"profiles_file" koanf:"profiles_file"`
	LikedFile    string `json:"liked_file" koanf:"liked_file"`
	MatchedFile  string `json:"matched_file" koanf:"matched_file"`
	BlockedFile  string `json:"blocked_file" koanf:"blocked_file"`
	DeclinedFile string `json:"declined_file" koanf:"declined_file"`
	DeletedFile  string `json:"deleted_file" koanf:"deleted_file"`
	ReportedFile string `json:"reported_file" koanf:"reported_file"`
}

// DefaultConfig returns the conventional export filenames.
func DefaultConfig() Config {
	return Config{
		Dir:          "data",
		ProfilesFile: "Profiles.csv",
		LikedFile:    "LikedUsers.csv",
		MatchedFile:  "MatchedUsers.csv",
		BlockedFile:  "BlockedUsers.csv",
		DeclinedFile: "DeclinedUsers.csv",
		DeletedFile:  "DeletedUsers.csv",
		ReportedFile: "ReportedUsers.csv",
	}
}

// LoadStats summarizes one load.
type LoadStats struct {
	Profiles          int `json:"profiles"`
	DuplicateProfiles int `json:"duplicate_profiles"`
	SkippedRows       int `json:"skipped_rows"`
	Liked             int `json:"liked"`
	Matched           int `json:"matched"`
	Excluded          int `json:"excluded"`
}

// Loader reads CSV exports into dataset snapshots.
type Loader struct {
	cfg    Config
	logger zerolog.Logger
}

// NewLoader creates a loader for the configured export directory.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLoader(cfg Config, logger zerolog.Logger) *Loader {
	def := DefaultConfig()
	if cfg.ProfilesFile == "" {
		cfg.ProfilesFile = def.ProfilesFile
	}
	if cfg.LikedFile == "" {
		cfg.LikedFile = def.LikedFile
	}
	if cfg.MatchedFile == "" {
		cfg.MatchedFile = def.MatchedFile
	}
	if cfg.BlockedFile == "" {
		cfg.BlockedFile = def.BlockedFile
	}
	if cfg.DeclinedFile == "" {
		cfg.DeclinedFile = def.DeclinedFile
	}
	if cfg.DeletedFile == "" {
		cfg.DeletedFile = def.DeletedFile
	}
	if cfg.ReportedFile == "" {
		cfg.ReportedFile = def.ReportedFile
	}

	return &Loader{
		cfg:    cfg,
		logger: logger.With().Str("component", "dataset").Logger(),
	}
}

// Load reads all seven CSV files into one snapshot.
func (l *Loader) Load() (*matchmaker.Dataset, *LoadStats, error) {
	stats := &LoadStats{}

	profiles, err := l.loadProfiles(stats)
	if err != nil {
		return nil, nil, err
	}

	liked, err := l.loadInteractions(l.cfg.LikedFile, models.InteractionLiked)
	if err != nil {
		return nil, nil, err
	}
	matched, err := l.loadInteractions(l.cfg.MatchedFile, models.InteractionMatched)
	if err != nil {
		return nil, nil, err
	}

	blocked, err := l.loadExclusions(l.cfg.BlockedFile)
	if err != nil {
		return nil, nil, err
	}
	declined, err := l.loadExclusions(l.cfg.DeclinedFile)
	if err != nil {
		return nil, nil, err
	}
	deleted, err := l.loadExclusions(l.cfg.DeletedFile)
	if err != nil {
		return nil, nil, err
	}
	reported, err := l.loadExclusions(l.cfg.ReportedFile)
	if err != nil {
		return nil, nil, err
	}

	stats.Profiles = len(profiles)
	stats.Liked = len(liked)
	stats.Matched = len(matched)
	stats.Excluded = len(blocked) + len(declined) + len(deleted) + len(reported)

	l.logger.Info().
		Int("profiles", stats.Profiles).
		Int("duplicates", stats.DuplicateProfiles).
		Int("skipped_rows", stats.SkippedRows).
		Int("liked", stats.Liked).
		Int("matched", stats.Matched).
		Int("excluded", stats.Excluded).
		Msg("loaded dataset snapshot")

	return &matchmaker.Dataset{
		Profiles:     profiles,
		Interactions: append(liked, matched...),
		Exclusions:   models.NewExclusionSets(blocked, declined, deleted, reported),
	}, stats, nil
}

// loadProfiles reads the profile table, deduplicating on profile id and
// skipping rows whose age does not parse.
func (l *Loader) loadProfiles(stats *LoadStats) ([]models.Profile, error) {
	rows, header, err := l.readCSV(l.cfg.ProfilesFile, profileColumns)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rows))
	profiles := make([]models.Profile, 0, len(rows))
	for i, row := range rows {
		id := row[header["__id__"]]
		if id == "" {
			stats.SkippedRows++
			l.logger.Warn().Int("row", i+2).Str("file", l.cfg.ProfilesFile).Msg("skipping row without profile id")
			continue
		}
		if _, dup := seen[id]; dup {
			stats.DuplicateProfiles++
			continue
		}

		age, err := strconv.Atoi(strings.TrimSpace(row[header["age"]]))
		if err != nil {
			stats.SkippedRows++
			l.logger.Warn().Int("row", i+2).Str("profile_id", id).Msg("skipping row with unparseable age")
			continue
		}

		seen[id] = struct{}{}
		profiles = append(profiles, models.Profile{
			ProfileID:             id,
			UserID:                row[header["userId"]],
			DisplayName:           row[header["userName"]],
			Age:                   age,
			Country:               fillUnknown(row[header["country"]]),
			Language:              fillUnknown(row[header["language"]]),
			Sex:                   fillUnknown(row[header["sex"]]),
			Seeking:               fillUnknown(row[header["seeking"]]),
			RelationshipGoals:     fillUnknown(row[header["relationshipGoals"]]),
			AboutMe:               row[header["aboutMe"]],
			Subscribed:            parseBool(row[header["subscribed"]]),
			SubscribedEliteOne:    parseBool(row[header["subscribedEliteOne"]]),
			SubscribedEliteThree:  parseBool(row[header["subscribedEliteThree"]]),
			SubscribedEliteSix:    parseBool(row[header["subscribedEliteSix"]]),
			SubscribedEliteTwelve: parseBool(row[header["subscribedEliteTwelve"]]),
		})
	}
	return profiles, nil
}

// loadInteractions reads one interaction table.
func (l *Loader) loadInteractions(file string, kind models.InteractionKind) ([]models.InteractionRecord, error) {
	rows, header, err := l.readCSV(file, interactionColumns)
	if err != nil {
		return nil, err
	}

	records := make([]models.InteractionRecord, 0, len(rows))
	for _, row := range rows {
		userID := row[header["userId"]]
		profileID := row[header["__id__"]]
		if userID == "" || profileID == "" {
			continue
		}
		records = append(records, models.InteractionRecord{
			UserID:    userID,
			ProfileID: profileID,
			Kind:      kind,
		})
	}
	return records, nil
}

// loadExclusions reads one exclusion id list.
func (l *Loader) loadExclusions(file string) ([]string, error) {
	rows, header, err := l.readCSV(file, exclusionColumns)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id := row[header["__id__"]]; id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// readCSV reads a whole file and validates its header against the required
// columns. Returns the data rows and a column-name-to-index map.
func (l *Loader) readCSV(file string, required []string) ([][]string, map[string]int, error) {
	path := filepath.Join(l.cfg.Dir, file)
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", file, err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	headerRow, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s header: %w", file, err)
	}

	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		header[strings.TrimSpace(name)] = i
	}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			return nil, nil, fmt.Errorf("%s: missing required column %q", file, col)
		}
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			l.logger.Warn().Err(err).Str("file", file).Msg("skipping malformed csv row")
			continue
		}
		if len(row) < len(headerRow) {
			l.logger.Warn().Str("file", file).Msg("skipping short csv row")
			continue
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

// fillUnknown maps empty categorical values to the unknown sentinel.
func fillUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return models.Unknown
	}
	return v
}

// parseBool accepts the export's boolean spellings: true/false in any
// case, and 0/1.
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1":
		return true
	default:
		return false
	}
}
