package store

import "errors"

// ErrNotFound is returned by the latest-entry lookups when a user has no
// records. Both backends return it so callers never branch on driver errors.
var ErrNotFound = errors.New("record not found")

// Notation is a daily structured well-being score entry. The JSON/BSON tags
// are the wire-alias mapping: canonical Go names on the left, the external
// field names (including the historical "3_things_note" alias) on the right.
// Both backends persist the wire names, so stored documents and API payloads
// round-trip through the same aliases.
type Notation struct {
	ID              string `json:"id,omitempty" bson:"-"`
	Name            string `json:"name" bson:"name"`
	Date            string `json:"date" bson:"date"`
	SpiritualNote   int    `json:"spiritual_note" bson:"spiritual_note"`
	PhysicalNote    int    `json:"physical_note" bson:"physical_note"`
	MentalNote      int    `json:"mental_note" bson:"mental_note"`
	BusinessNote    int    `json:"business_note" bson:"business_note"`
	SocialNote      int    `json:"social_note" bson:"social_note"`
	ThreeThingsNote int    `json:"3_things_note" bson:"3_things_note"`
	RussianNote     int    `json:"russian_note" bson:"russian_note"`
}

// Input is a raw free-text daily journal entry ingested from an external
// channel. The capitalized wire names come from the ingestion pipeline and
// are preserved verbatim.
type Input struct {
	ID               string `json:"id,omitempty" bson:"-"`
	Name             string `json:"Name" bson:"Name"`
	Date             string `json:"Date" bson:"Date"`
	SpiritualMeaning string `json:"Spiritual_meaning" bson:"Spiritual_meaning"`
	PhysicalMeaning  string `json:"Physical_meaning" bson:"Physical_meaning"`
	MentalMeaning    string `json:"Mental_meaning" bson:"Mental_meaning"`
	BusinessMeaning  string `json:"Business_meaning" bson:"Business_meaning"`
	SocialMeaning    string `json:"Social_meaning" bson:"Social_meaning"`
	ThreeThings      string `json:"3_things" bson:"3_things"`
	RussianLesson    string `json:"Russian_lesson" bson:"Russian_lesson"`
}

// AIOutput is a stored AI-generated text artifact tied to a user and date.
// Generation happens elsewhere; this system only persists and serves it.
type AIOutput struct {
	ID     string `json:"id,omitempty" bson:"-"`
	Name   string `json:"Name" bson:"Name"`
	Date   string `json:"Date" bson:"Date"`
	Output string `json:"output" bson:"output"`
}

// ListQuery describes a per-user listing. StartDate/EndDate are inclusive
// bounds compared as strings, so dates must be zero-padded fixed-width
// (YYYY/MM/DD) to order correctly. Limit <= 0 means unbounded. Results are
// sorted by date descending unless SortAsc is set.
type ListQuery struct {
	Name      string
	StartDate string
	EndDate   string
	Limit     int64
	SortAsc   bool
}
