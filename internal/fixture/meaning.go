package fixture

import (
	"strings"

	"nhs-dm-tool/internal/semantic"
)

// Meanings assigned by AnalyzeMeaning.
const (
	MeaningMRN         = "mrn"
	MeaningNHS         = "nhs"
	MeaningDOB         = "dob"
	MeaningPostcode    = "postcode"
	MeaningForename    = "forename"
	MeaningSurname     = "surname"
	MeaningTitle       = "title"
	MeaningConsultant  = "consultant"
	MeaningSpecialty   = "specialty"
	MeaningWard        = "ward"
	MeaningSex         = "sex"
	MeaningEthnic      = "ethnic"
	MeaningMethod      = "method"
	MeaningTime        = "time"
	MeaningDate        = "date"
	MeaningPhone       = "phone"
	MeaningEmail       = "email"
	MeaningAddress     = "address"
	MeaningName        = "name"
	MeaningFlag        = "yesno"
	MeaningDescription = "description"
	MeaningCode        = "code"
	MeaningNumber      = "number"
	MeaningText        = "text"
)

// abbreviations expand PAS column shorthand before matching.
var abbreviations = map[string]string{
	"intpatno": "internalpatientnumber", "mrn": "internalpatientnumber",
	"crn": "internalpatientnumber", "dob": "dateofbirth",
	"nm": "name", "dt": "date", "no": "number", "cd": "code",
	"desc": "description", "cnt": "count", "qty": "quantity",
	"addr": "address", "tel": "phone", "ph": "phone", "mob": "phone",
	"postcd": "postcode", "cons": "consultant", "spec": "specialty",
	"yn": "yesno", "flg": "flag", "is": "yesno", "txt": "text",
	"stat": "status", "sts": "status", "typ": "type", "tm": "time",
}

type meaningRule struct {
	meaning string
	any     []string
}

// meaningRules are tested in order against the expanded, joined field name.
var meaningRules = []meaningRule{
	{MeaningMRN, []string{"internalpatientnumber", "districtnumber", "casenote"}},
	{MeaningNHS, []string{"nhs"}},
	{MeaningDOB, []string{"dateofbirth", "birth"}},
	{MeaningPostcode, []string{"postcode"}},
	{MeaningForename, []string{"forename", "firstname", "givenname"}},
	{MeaningSurname, []string{"surname", "familyname", "lastname"}},
	{MeaningTitle, []string{"title"}},
	{MeaningConsultant, []string{"consultant"}},
	{MeaningSpecialty, []string{"specialty", "speciality"}},
	{MeaningWard, []string{"ward"}},
	{MeaningSex, []string{"sex", "gender"}},
	{MeaningEthnic, []string{"ethnic"}},
	{MeaningMethod, []string{"method"}},
	{MeaningDate, []string{"datetime"}},
	{MeaningTime, []string{"time"}},
	{MeaningDate, []string{"date"}},
	{MeaningPhone, []string{"phone"}},
	{MeaningEmail, []string{"email"}},
	{MeaningAddress, []string{"address", "street", "town"}},
	{MeaningName, []string{"name"}},
	{MeaningFlag, []string{"yesno", "flag"}},
	{MeaningDescription, []string{"description", "comment", "note", "text"}},
	{MeaningCode, []string{"code", "status", "type"}},
	{MeaningNumber, []string{"number", "count", "quantity", "id"}},
}

// AnalyzeMeaning guesses what a source column holds. A strong keyword in the
// catalog description wins over the column name.
func AnalyzeMeaning(field, description string) string {
	d := strings.ToLower(description)
	switch {
	case strings.Contains(d, "nhs number"):
		return MeaningNHS
	case strings.Contains(d, "date of birth"):
		return MeaningDOB
	case strings.Contains(d, "postcode"):
		return MeaningPostcode
	case strings.Contains(d, "telephone"), strings.Contains(d, "phone"):
		return MeaningPhone
	}

	var parts []string
	for _, tok := range semantic.Tokenize(field) {
		if exp, ok := abbreviations[tok]; ok {
			tok = exp
		}
		parts = append(parts, tok)
	}
	joined := strings.Join(parts, "")
	raw := strings.ToLower(field)
	if exp, ok := abbreviations[raw]; ok {
		joined = exp
	}
	if strings.Contains(raw, "dob") {
		return MeaningDOB
	}

	for _, r := range meaningRules {
		for _, kw := range r.any {
			if strings.Contains(joined, kw) {
				return r.meaning
			}
		}
	}
	return MeaningText
}
