// Package resume owns the in-memory resume document: its structural
// mutations, its published snapshots and the observers of those snapshots.
package resume

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"resume-builder/core"

	"github.com/sirupsen/logrus"
)

// Persistence is the store's view of the persistence adapter.
type Persistence interface {
	Load(ctx context.Context) (*core.Document, error)
	// Schedule asks for doc to be written eventually. Implementations coalesce.
	Schedule(doc *core.Document)
	Close()
}

type Options struct {
	// Persistence may be nil for a purely in-memory store.
	Persistence Persistence
	Logger      *logrus.Entry
}

type observer struct {
	id int
	fn func(*core.Document)
}

// Store holds one user's document. Mutations must come from a single logical
// writer; Snapshot may be called from any goroutine. Every successful mutation
// publishes a new snapshot, schedules a save and notifies observers in
// subscription order before returning. A failed mutation changes nothing.
type Store struct {
	current     atomic.Pointer[core.Document]
	persistence Persistence
	log         *logrus.Entry

	obsMu     sync.Mutex
	observers []observer
	nextObsID int
}

// New builds a store from the persisted document. It falls back to
// DefaultDocument only when nothing is stored or the stored blob is
// unreadable; any other load failure is returned, since a store built on the
// seed would overwrite the user's document on its first save.
func New(ctx context.Context, opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Store{
		persistence: opts.Persistence,
		log:         log,
	}

	var doc *core.Document
	if s.persistence != nil {
		loaded, err := s.persistence.Load(ctx)
		switch {
		case err == nil:
			doc = loaded
		case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrUnreadable):
			log.WithField("error", err).Warn("Falling back to default resume")
		default:
			return nil, err
		}
	}
	if doc == nil {
		doc = DefaultDocument()
	}
	s.current.Store(doc)
	return s, nil
}

// Snapshot returns the current document. It must not be modified.
func (s *Store) Snapshot() *core.Document {
	return s.current.Load()
}

// Subscribe registers fn to receive every snapshot published after this call.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(*core.Document)) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observer{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *Store) unsubscribe(id int) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	for i, o := range s.observers {
		if o.id == id {
			s.observers = removeAt(s.observers, i)
			return
		}
	}
}

// Close releases the persistence adapter. A save still waiting for its
// debounce window is abandoned; the last flushed document is what survives.
func (s *Store) Close() {
	if s.persistence != nil {
		s.persistence.Close()
	}
}

func (s *Store) publish(next *core.Document) {
	s.current.Store(next)
	if s.persistence != nil {
		s.persistence.Schedule(next)
	}

	s.obsMu.Lock()
	observers := s.observers
	s.obsMu.Unlock()
	for _, o := range observers {
		o.fn(next)
	}
}

// draft returns a shallow copy of the current snapshot. Callers replace any
// slice they change instead of writing through it.
func (s *Store) draft() *core.Document {
	d := *s.current.Load()
	return &d
}

func (s *Store) UpdatePersonalField(field core.PersonalField, value string) error {
	if !field.Valid() {
		return &core.InvalidFieldError{Entity: "personal", Field: fmt.Sprint(int(field))}
	}
	next := s.draft()
	p := &next.Personal
	switch field {
	case core.PersonalName:
		p.Name = value
	case core.PersonalEmail:
		p.Email = value
	case core.PersonalPhone:
		p.Phone = value
	case core.PersonalLocation:
		p.Location = value
	case core.PersonalTitle:
		p.Title = value
	case core.PersonalSummary:
		p.Summary = value
	case core.PersonalWebsite:
		p.Website = value
	case core.PersonalLinkedIn:
		p.LinkedIn = value
	}
	s.publish(next)
	s.log.WithField("field", field.String()).Debug("Personal field updated")
	return nil
}

// AddExperienceEntry appends a blank entry and returns its id. The entry
// starts with no highlight lines.
func (s *Store) AddExperienceEntry() string {
	entry := core.ExperienceEntry{ID: NewID(), Highlights: []string{}}
	next := s.draft()
	next.Experience = appendCopy(next.Experience, entry)
	s.publish(next)
	s.log.WithField("entry_id", entry.ID).Debug("Experience entry added")
	return entry.ID
}

// UpdateExperienceEntry sets one field of the entry at index. Highlights are
// given as newline-delimited text; blank lines are dropped.
func (s *Store) UpdateExperienceEntry(index int, field core.ExperienceField, value string) error {
	cur := s.current.Load()
	if err := checkIndex("experience", index, len(cur.Experience)); err != nil {
		return err
	}
	if !field.Valid() {
		return &core.InvalidFieldError{Entity: "experience", Field: fmt.Sprint(int(field))}
	}

	entry := cur.Experience[index]
	switch field {
	case core.ExperienceCompany:
		entry.Company = value
	case core.ExperiencePosition:
		entry.Position = value
	case core.ExperienceStartDate:
		entry.StartDate = value
	case core.ExperienceEndDate:
		entry.EndDate = value
	case core.ExperienceDescription:
		entry.Description = value
	case core.ExperienceHighlights:
		entry.Highlights = splitHighlights(value)
	}

	next := s.draft()
	next.Experience = replaceAt(cur.Experience, index, entry)
	s.publish(next)
	s.log.WithFields(logrus.Fields{"entry_id": entry.ID, "field": field.String()}).Debug("Experience entry updated")
	return nil
}

func (s *Store) RemoveExperienceEntry(index int) error {
	cur := s.current.Load()
	if err := checkIndex("experience", index, len(cur.Experience)); err != nil {
		return err
	}
	next := s.draft()
	next.Experience = removeAt(cur.Experience, index)
	s.publish(next)
	s.log.WithField("entry_id", cur.Experience[index].ID).Debug("Experience entry removed")
	return nil
}

// MoveExperienceEntry moves the entry at from so that it ends up at to.
func (s *Store) MoveExperienceEntry(from, to int) error {
	cur := s.current.Load()
	if err := checkMove("experience", from, to, len(cur.Experience)); err != nil {
		return err
	}
	next := s.draft()
	next.Experience = move(cur.Experience, from, to)
	s.publish(next)
	return nil
}

func (s *Store) AddEducationEntry() string {
	entry := core.EducationEntry{ID: NewID()}
	next := s.draft()
	next.Education = appendCopy(next.Education, entry)
	s.publish(next)
	s.log.WithField("entry_id", entry.ID).Debug("Education entry added")
	return entry.ID
}

func (s *Store) UpdateEducationEntry(index int, field core.EducationField, value string) error {
	cur := s.current.Load()
	if err := checkIndex("education", index, len(cur.Education)); err != nil {
		return err
	}
	if !field.Valid() {
		return &core.InvalidFieldError{Entity: "education", Field: fmt.Sprint(int(field))}
	}

	entry := cur.Education[index]
	switch field {
	case core.EducationInstitution:
		entry.Institution = value
	case core.EducationDegree:
		entry.Degree = value
	case core.EducationFieldOfStudy:
		entry.Field = value
	case core.EducationStartDate:
		entry.StartDate = value
	case core.EducationEndDate:
		entry.EndDate = value
	case core.EducationGPA:
		entry.GPA = value
	}

	next := s.draft()
	next.Education = replaceAt(cur.Education, index, entry)
	s.publish(next)
	s.log.WithFields(logrus.Fields{"entry_id": entry.ID, "field": field.String()}).Debug("Education entry updated")
	return nil
}

func (s *Store) RemoveEducationEntry(index int) error {
	cur := s.current.Load()
	if err := checkIndex("education", index, len(cur.Education)); err != nil {
		return err
	}
	next := s.draft()
	next.Education = removeAt(cur.Education, index)
	s.publish(next)
	s.log.WithField("entry_id", cur.Education[index].ID).Debug("Education entry removed")
	return nil
}

func (s *Store) MoveEducationEntry(from, to int) error {
	cur := s.current.Load()
	if err := checkMove("education", from, to, len(cur.Education)); err != nil {
		return err
	}
	next := s.draft()
	next.Education = move(cur.Education, from, to)
	s.publish(next)
	return nil
}

// AddSkill appends the trimmed skill. Blank and already present skills are
// ignored; the result reports whether the document changed.
func (s *Store) AddSkill(text string) bool {
	skill := strings.TrimSpace(text)
	cur := s.current.Load()
	if skill == "" || cur.HasSkill(skill) {
		return false
	}
	next := s.draft()
	next.Skills = appendCopy(cur.Skills, skill)
	s.publish(next)
	s.log.WithField("skill", skill).Debug("Skill added")
	return true
}

func (s *Store) RemoveSkill(index int) error {
	cur := s.current.Load()
	if err := checkIndex("skills", index, len(cur.Skills)); err != nil {
		return err
	}
	next := s.draft()
	next.Skills = removeAt(cur.Skills, index)
	s.publish(next)
	return nil
}

// AddCustomSection appends a section with an empty body. Titles may repeat.
func (s *Store) AddCustomSection(title string) string {
	section := core.CustomSection{ID: NewID(), Title: title}
	next := s.draft()
	next.CustomSections = appendCopy(next.CustomSections, section)
	s.publish(next)
	s.log.WithField("section_id", section.ID).Debug("Custom section added")
	return section.ID
}

func (s *Store) UpdateCustomSection(index int, field core.CustomSectionField, value string) error {
	cur := s.current.Load()
	if err := checkIndex("customSections", index, len(cur.CustomSections)); err != nil {
		return err
	}
	section := cur.CustomSections[index]
	switch field {
	case core.CustomSectionTitle:
		section.Title = value
	case core.CustomSectionContent:
		section.Content = value
	default:
		return &core.InvalidFieldError{Entity: "customSection", Field: fmt.Sprint(int(field))}
	}

	next := s.draft()
	next.CustomSections = replaceAt(cur.CustomSections, index, section)
	s.publish(next)
	return nil
}

func (s *Store) RemoveCustomSection(index int) error {
	cur := s.current.Load()
	if err := checkIndex("customSections", index, len(cur.CustomSections)); err != nil {
		return err
	}
	next := s.draft()
	next.CustomSections = removeAt(cur.CustomSections, index)
	s.publish(next)
	return nil
}

func (s *Store) MoveCustomSection(from, to int) error {
	cur := s.current.Load()
	if err := checkMove("customSections", from, to, len(cur.CustomSections)); err != nil {
		return err
	}
	next := s.draft()
	next.CustomSections = move(cur.CustomSections, from, to)
	s.publish(next)
	return nil
}

// ChangeTemplate switches the presentation template. Content is untouched.
func (s *Store) ChangeTemplate(id core.TemplateID) error {
	if !id.Valid() {
		return &core.InvalidTemplateError{Template: string(id)}
	}
	next := s.draft()
	next.Template = id
	s.publish(next)
	s.log.WithField("template", id).Debug("Template changed")
	return nil
}

func checkIndex(section string, index, n int) error {
	if index < 0 || index >= n {
		return &core.IndexOutOfRangeError{Section: section, Index: index, Len: n}
	}
	return nil
}

func checkMove(section string, from, to, n int) error {
	if err := checkIndex(section, from, n); err != nil {
		return err
	}
	return checkIndex(section, to, n)
}

// The helpers below never write into their input slice.

func appendCopy[T any](items []T, v T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, v)
}

func replaceAt[T any](items []T, i int, v T) []T {
	out := make([]T, len(items))
	copy(out, items)
	out[i] = v
	return out
}

func removeAt[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

func move[T any](items []T, from, to int) []T {
	v := items[from]
	out := removeAt(items, from)
	out = append(out, v)
	copy(out[to+1:], out[to:len(out)-1])
	out[to] = v
	return out
}
