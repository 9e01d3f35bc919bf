// Package schema defines the create payloads for the three record kinds and
// validates them before any store access. Wire aliases (for example the
// historical "3_things_note" key) are declared once in the struct tags and
// apply symmetrically on ingress and egress.
package schema

import (
	"regexp"
	"strings"

	"github.com/SstealzZ/SynapseOS/internal/store"
)

// FieldError names the first offending field of a rejected payload.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

func invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

var notationDatePattern = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`)

// NotationCreate carries the client-submitted daily scores. Scores are
// pointers so that a missing field is distinguishable from a legitimate 0.
type NotationCreate struct {
	Name            string `json:"name"`
	Date            string `json:"date"`
	SpiritualNote   *int   `json:"spiritual_note"`
	PhysicalNote    *int   `json:"physical_note"`
	MentalNote      *int   `json:"mental_note"`
	BusinessNote    *int   `json:"business_note"`
	SocialNote      *int   `json:"social_note"`
	ThreeThingsNote *int   `json:"3_things_note"`
	RussianNote     *int   `json:"russian_note"`
}

func (c NotationCreate) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", "name is required")
	}
	if !notationDatePattern.MatchString(c.Date) {
		return invalid("date", "date must use the YYYY/MM/DD format")
	}
	scores := []struct {
		field string
		value *int
	}{
		{"spiritual_note", c.SpiritualNote},
		{"physical_note", c.PhysicalNote},
		{"mental_note", c.MentalNote},
		{"business_note", c.BusinessNote},
		{"social_note", c.SocialNote},
		{"3_things_note", c.ThreeThingsNote},
		{"russian_note", c.RussianNote},
	}
	for _, score := range scores {
		if score.value == nil {
			return invalid(score.field, "field is required")
		}
		if *score.value < 0 || *score.value > 10 {
			return invalid(score.field, "score must be between 0 and 10")
		}
	}
	return nil
}

func (c NotationCreate) Record() store.Notation {
	return store.Notation{
		Name:            c.Name,
		Date:            c.Date,
		SpiritualNote:   *c.SpiritualNote,
		PhysicalNote:    *c.PhysicalNote,
		MentalNote:      *c.MentalNote,
		BusinessNote:    *c.BusinessNote,
		SocialNote:      *c.SocialNote,
		ThreeThingsNote: *c.ThreeThingsNote,
		RussianNote:     *c.RussianNote,
	}
}

// InputCreate carries a raw journal entry from the ingestion channel. The
// free-text fields are pointers for the same presence-vs-empty reason as
// notation scores: an empty string is a valid journal value.
type InputCreate struct {
	Name             string  `json:"Name"`
	Date             string  `json:"Date"`
	SpiritualMeaning *string `json:"Spiritual_meaning"`
	PhysicalMeaning  *string `json:"Physical_meaning"`
	MentalMeaning    *string `json:"Mental_meaning"`
	BusinessMeaning  *string `json:"Business_meaning"`
	SocialMeaning    *string `json:"Social_meaning"`
	ThreeThings      *string `json:"3_things"`
	RussianLesson    *string `json:"Russian_lesson"`
}

func (c InputCreate) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("Name", "Name is required")
	}
	if strings.TrimSpace(c.Date) == "" {
		return invalid("Date", "Date is required")
	}
	texts := []struct {
		field string
		value *string
	}{
		{"Spiritual_meaning", c.SpiritualMeaning},
		{"Physical_meaning", c.PhysicalMeaning},
		{"Mental_meaning", c.MentalMeaning},
		{"Business_meaning", c.BusinessMeaning},
		{"Social_meaning", c.SocialMeaning},
		{"3_things", c.ThreeThings},
		{"Russian_lesson", c.RussianLesson},
	}
	for _, text := range texts {
		if text.value == nil {
			return invalid(text.field, "field is required")
		}
	}
	return nil
}

func (c InputCreate) Record() store.Input {
	return store.Input{
		Name:             c.Name,
		Date:             c.Date,
		SpiritualMeaning: *c.SpiritualMeaning,
		PhysicalMeaning:  *c.PhysicalMeaning,
		MentalMeaning:    *c.MentalMeaning,
		BusinessMeaning:  *c.BusinessMeaning,
		SocialMeaning:    *c.SocialMeaning,
		ThreeThings:      *c.ThreeThings,
		RussianLesson:    *c.RussianLesson,
	}
}

type AIOutputCreate struct {
	Name   string  `json:"Name"`
	Date   string  `json:"Date"`
	Output *string `json:"output"`
}

func (c AIOutputCreate) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("Name", "Name is required")
	}
	if strings.TrimSpace(c.Date) == "" {
		return invalid("Date", "Date is required")
	}
	if c.Output == nil {
		return invalid("output", "field is required")
	}
	return nil
}

func (c AIOutputCreate) Record() store.AIOutput {
	return store.AIOutput{
		Name:   c.Name,
		Date:   c.Date,
		Output: *c.Output,
	}
}
