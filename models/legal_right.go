package models

// LegalRight is one entry of the Legal Rights Guide reference dataset
type LegalRight struct {
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Category      string   `json:"category" yaml:"category"`
	Summary       string   `json:"summary" yaml:"summary"`
	Details       string   `json:"details" yaml:"details"`
	LawReferences []string `json:"law_references" yaml:"law_references"`
	Keywords      []string `json:"keywords" yaml:"keywords"`
	Helplines     []string `json:"helplines,omitempty" yaml:"helplines"`
}
