package store

import "time"

// Industry is a vertical whose jargon the app teaches.
type Industry struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Term is a jargon term with per-locale definitions.
type Term struct {
	ID           string    `db:"id" json:"id"`
	Word         string    `db:"word" json:"word"`
	LevelID      int64     `db:"level_id" json:"levelId"`
	IndustryID   *int64    `db:"industry_id" json:"industryId,omitempty"`
	DefinitionEN string    `db:"definition_en" json:"definitionEn"`
	DefinitionES string    `db:"definition_es" json:"definitionEs"`
	DefinitionFR string    `db:"definition_fr" json:"definitionFr"`
	DefinitionZH string    `db:"definition_zh" json:"definitionZh"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Definition returns the definition for a locale. The Locale type is closed,
// so the zero-value fallthrough is unreachable for parsed input.
func (t *Term) Definition(loc Locale) string {
	switch loc {
	case LocaleSpanish:
		return t.DefinitionES
	case LocaleFrench:
		return t.DefinitionFR
	case LocaleChinese:
		return t.DefinitionZH
	default:
		return t.DefinitionEN
	}
}

// LocalizedTerm is the single-language view served by the API.
type LocalizedTerm struct {
	ID         string `json:"id"`
	Word       string `json:"word"`
	LevelID    int64  `json:"levelId"`
	IndustryID *int64 `json:"industryId,omitempty"`
	Definition string `json:"definition"`
}

// Localize projects the term into one locale.
func (t *Term) Localize(loc Locale) LocalizedTerm {
	return LocalizedTerm{
		ID:         t.ID,
		Word:       t.Word,
		LevelID:    t.LevelID,
		IndustryID: t.IndustryID,
		Definition: t.Definition(loc),
	}
}

// TermRef is the minimal projection kept in the random-selection index.
type TermRef struct {
	ID         string `db:"id"`
	IndustryID *int64 `db:"industry_id"`
	LevelID    int64  `db:"level_id"`
}
