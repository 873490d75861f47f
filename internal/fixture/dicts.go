package fixture

// Code lists drawn from the PAS data dictionary.
var (
	SexCodes = []string{"1", "2", "9"}

	EthnicCodes = []string{"A", "B", "C", "D", "E", "F", "G", "H", "J", "K", "L", "M", "N", "P", "R", "S", "Z"}

	Titles = map[string][]string{
		"1": {"MR", "DR"},
		"2": {"MRS", "MS", "MISS", "DR"},
		"9": {"MX"},
	}

	SpecialtyCodes = []string{"100", "101", "110", "120", "130", "140", "150", "160", "300", "301", "320", "330", "340", "400", "410", "420", "430", "501", "502", "560", "800"}

	WardCodes = []string{"AMU", "CCU", "ICU", "W01", "W02", "W03", "W10", "W12", "MAT1", "PAED", "SAU", "DCU"}

	MethodCodes = []string{"11", "12", "13", "21", "22", "23", "24", "28", "31", "32", "81", "82", "83"}

	ConsultantCodes = []string{"C1234567", "C2345678", "C3456789", "C4567890", "C5678901", "C6789012", "C7890123"}
)

// Postcode outward codes for synthetic addresses.
var OutwardCodes = []string{"LS1", "LS6", "M1", "M14", "B15", "NE1", "S10", "L8", "BS2", "CF10", "EH3", "G12", "OX3", "CB2", "SW1A", "E1", "N7", "SE5"}

// Towns keep addresses and postcodes plausible together.
var Towns = []string{"Leeds", "Manchester", "Birmingham", "Newcastle", "Sheffield", "Liverpool", "Bristol", "Cardiff", "Edinburgh", "Glasgow", "Oxford", "Cambridge", "London"}

// Streets suffix generated street names.
var Streets = []string{"Road", "Street", "Lane", "Avenue", "Close", "Drive", "Grove", "Terrace", "Crescent", "Way"}
