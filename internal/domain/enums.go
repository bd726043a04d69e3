package domain

import "strings"

// Register classifies a lexicon headword by variety of origin.
// It is a lexicon-internal tag, not a dialect identity: colloquial and
// foreign headwords still belong to the standard dialect record.
type Register string

const (
	RegisterMSA        Register = "msa"
	RegisterColloquial Register = "colloquial"
	RegisterForeign    Register = "foreign"
)

func (r Register) String() string { return string(r) }

func (r Register) IsValid() bool {
	switch r {
	case RegisterMSA, RegisterColloquial, RegisterForeign:
		return true
	}
	return false
}

// ParseRegister maps a raw lexicon register value to a Register.
// Unknown values default to RegisterMSA, matching the open-world stance:
// a bad tag must not drop an otherwise valid headword.
func ParseRegister(raw string) Register {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "colloquial", "dialectal":
		return RegisterColloquial
	case "foreign", "loan":
		return RegisterForeign
	default:
		return RegisterMSA
	}
}
