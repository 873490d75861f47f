package contract

// lookupHints mark coded fields that need crosswalk translation.
var lookupHints = []string{
	"code",
	"status",
	"type",
	"reason",
	"outcome",
	"specialty",
	"religion",
	"ethnic",
	"nationality",
	"language",
	"marital",
	"occupation",
	"priority",
	"urgency",
}

// derivedHints mark fields assembled rather than copied.
var derivedHints = []string{
	"age",
	"duration",
	"profile",
	"comments",
	"note",
	"summary",
}

// PrimarySources lists, in search order, the curated source tables for each
// target table.
var PrimarySources = map[string][]string{
	"LOAD_PMI":                    {"PATDATA", "ADTLADDCOR", "GPHISTORY", "GP", "POSTCODE"},
	"LOAD_PMIIDS":                 {"PATDATA"},
	"LOAD_PMIALIASES":             {"PATDATA"},
	"LOAD_PMIADDRS":               {"PATDATA", "ADTLADDCOR", "POSTCODE", "PSEUDOPCODE"},
	"LOAD_PMICONTACTS":            {"PATDATA"},
	"LOAD_PMIALLERGIES":           {"PATDATA"},
	"LOAD_PMISTAFFWARNINGS":       {"PATDATA"},
	"LOAD_PMIGPAUDIT":             {"PATDATA", "GPHISTORY", "GP"},
	"LOAD_CASENOTELOCS":           {"LOCATIONCODES", "LOCN"},
	"LOAD_PMICASENOTEHISTORY":     {"PATDATA", "GPHISTORY"},
	"LOAD_RTT_PATHWAYS":           {"OPREFERRAL", "WLCURRENT", "WLENTRY", "OPREFTKSTATUS"},
	"LOAD_REFERRALS":              {"OPREFERRAL", "OPA", "WLCURRENT", "WLENTRY"},
	"LOAD_RTT_PERIODS":            {"OPREFERRAL", "WLCURRENT", "WLENTRY"},
	"LOAD_RTT_EVENTS":             {"OPREFERRAL", "WLCURRENT", "WLENTRY", "WLACTIVITY"},
	"LOAD_OPDWAITLIST":            {"OPA", "OPREFERRAL", "WLCURRENT", "WLENTRY", "WLACTIVITY"},
	"LOAD_OPDWAITLISTDEF":         {"WLACTIVITY", "WLSUSPREASONMF"},
	"LOAD_OPD_APPOINTMENTS":       {"OPA", "OPREFERRAL", "OCCANCEL", "HWSAPP"},
	"LOAD_OPD_CODING":             {"OPA", "FCEEXT", "AEAUSERDIAG"},
	"LOAD_CMTY_APPOINTMENTS":      {"CPSGREFERRAL", "HWSAPP", "OPA", "CPFTEAMS", "CPFLOCATION"},
	"LOAD_IWL":                    {"WLCURRENT", "WLENTRY", "WLACTIVITY"},
	"LOAD_IWL_DEFERRALS":          {"WLACTIVITY", "WLSUSPREASONMF"},
	"LOAD_IWL_TCIS":               {"WLACTIVITY", "WLCURRENT"},
	"LOAD_ADT_ADMISSIONS":         {"ADMITDISCH", "WLCURRENT", "WLENTRY", "CONSWARDSTAY", "OCCANCEL"},
	"LOAD_ADT_EPISODES":           {"FCEEXT", "ADMITDISCH", "SMREPISODE", "CONSEPISODE"},
	"LOAD_ADT_WARDSTAYS":          {"ADMITDISCH", "FCEEXT", "WARDSTAY", "CONSWARDSTAY", "WARD"},
	"LOAD_ADT_CODING":             {"FCEEXT", "OPA", "CONSEPISDIAG", "CONSEPISPROC", "AEAUSERDIAG"},
	"LOAD_MH_DETENTION_MASTER":    {"SMREPISODE", "CPSGREFERRAL", "LEGALSTATUSDETS"},
	"LOAD_MH_DETENTION_TRANSFERS": {"SMREPISODE", "LEGALSTATUSDETS"},
	"LOAD_MH_CPA_MASTER":          {"SMREPISODE", "CPFDISCHREASON", "CPFTEAMS"},
	"LOAD_MH_CPA_HISTORY":         {"SMREPISODE", "CPFDISCHREASON", "CPFTEAMS"},
	"LOAD_OPD_ARCHIVE":            {"OPA", "OPREFERRAL", "OCCANCEL", "HWSAPP"},
	"LOAD_ADT_ARCHIVE":            {"ADMITDISCH", "FCEEXT", "CONSWARDSTAY", "WARD", "OCCANCEL"},
	"LOAD_DETENTION_ARCHIVE":      {"SMREPISODE", "LEGALSTATUSDETS"},
	"LOAD_CPA_ARCHIVE":            {"SMREPISODE", "CPFDISCHREASON"},
}

// fieldAlias maps normalized target names onto the normalized source name
// that carries the same data in PAS.
var fieldAlias = map[string]string{
	"maincrn":                "internalpatientnumber",
	"maincrntype":            "idtype",
	"nhsnumber":              "nhsnumber",
	"ofbirth":                "dateofbirth",
	"dateofbirth":            "dateofbirth",
	"patname1":               "forenames",
	"patnamefamily":          "surname",
	"postcode":               "postcode",
	"gpnationalcode":         "gpcode",
	"practicenationalcode":   "practicecode",
	"admitdate":              "admissiondate",
	"dischargedate":          "dischargedate",
	"methodofadmission":      "methodofadmission",
	"methodofdischarge":      "methodofdischarge",
	"sourceofadmission":      "sourceofadm",
	"destinationondischarge": "destinationondischarge",
	"consultantcode":         "consultant",
	"consultantname":         "consultant",
	"eventdate":              "statusdt",
	"eventactioncode":        "status",
	"eventreasoncode":        "reason",
	"timecomplete":           "apptendtime",
	"timearrived":            "appttime",
	"timeseen":               "appttime",
	"apptteam":               "specialty",
	"waitlistprofile":        "specialty",
	"waitlistdate":           "dateonlist",
	"cancelleddate":          "datecancelled",
	"refreceiveddate":        "referraldate",
	"admitfrom":              "sourceofadm",
	"admittedby":             "consultant",
	"dischargedby":           "consultant",
	"deferralstart":          "deferralstartdate",
	"deferralend":            "deferralenddate",
	"deferralreason":         "deferralreason",
	"deferralcomment":        "deferralcomment",
}

// Fixed rule and note texts written to the contract.
const (
	rulePhantom    = "Exclude: parse artefact field from non-authoritative PDF conversion."
	ruleSurrogate  = "Generate during ETL sequencing and key orchestration."
	ruleReference  = "Populate from operational master/reference datasets (not patient transaction extract)."
	ruleArchive    = "Assemble from multi-table joins (transactional + lookup + historical contexts)."
	ruleDerived    = "Derived from clinical workflow context and/or defaults when direct source absent."
	ruleUnresolved = "No trusted source field in current source catalog; requires SME decision/default."

	noteLookup     = "Code/value translation required against PAS code sets."
	noteDerived    = "Derived/constructed field from source clinical context."
	noteArchive    = "Archive structure is denormalized and assembled from multiple source entities."
	noteDirect     = "Direct field transfer from source with datatype/format normalization."
	noteArchiveSyn = "Explicit archive synthesis mapping required."
	noteDerivedSyn = "No single-source equivalent; ETL derivation rule required."
	noteUnresolved = "Business mapping unresolved."
)
