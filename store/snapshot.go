package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"taskflow-project/taskflow-service/models"
)

// snapshotDocument is the persisted form of the whole store: one map per
// entity kind keyed by id, plus the save timestamp. Enumerated fields
// serialize to their stable codes, instants to RFC 3339 with timezone, and
// absent optional fields to explicit JSON null, so a save/load round trip
// is lossless.
type snapshotDocument struct {
	Members  map[string]*models.Member  `json:"members"`
	Projects map[string]*models.Project `json:"projects"`
	Tasks    map[string]*models.Task    `json:"tasks"`
	Tags     map[string]*models.Tag     `json:"tags"`
	Sprints  map[string]*models.Sprint  `json:"sprints"`
	SavedAt  time.Time                  `json:"savedAt"`
}

// Save serializes the whole store into one JSON document at path. An empty
// path falls back to the store's configured persist path; when neither is
// set, Save is a no-op. The lock is held for the full serialization - an
// infrequent bulk operation, not a hot path.
func (ds *DataStore) Save(path string) error {
	target := path
	if target == "" {
		target = ds.persistPath
	}
	if target == "" {
		return nil
	}

	ds.mu.RLock()
	doc := snapshotDocument{
		Members:  ds.members,
		Projects: ds.projects,
		Tasks:    ds.tasks,
		Tags:     ds.tags,
		Sprints:  ds.sprints,
		SavedAt:  time.Now().UTC(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	ds.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to serialize store: %w", err)
	}

	if err := os.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot to %s: %w", target, err)
	}
	return nil
}

// Load replaces the in-memory state with the snapshot at path.
func (ds *DataStore) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot from %s: %w", path, err)
	}

	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.clearLocked()
	for id, m := range doc.Members {
		ds.members[id] = m
	}
	for id, p := range doc.Projects {
		ds.projects[id] = p
	}
	for id, t := range doc.Tasks {
		ds.tasks[id] = t
	}
	for id, g := range doc.Tags {
		ds.tags[id] = g
	}
	for id, s := range doc.Sprints {
		ds.sprints[id] = s
	}
	return nil
}
