package semantic

// PriorityTables are the core transactional PAS extracts.
var PriorityTables = map[string]bool{
	"PATDATA":      true,
	"ADMITDISCH":   true,
	"OPA":          true,
	"FCEEXT":       true,
	"OPREFERRAL":   true,
	"WLCURRENT":    true,
	"WLENTRY":      true,
	"WLACTIVITY":   true,
	"CPSGREFERRAL": true,
	"SMREPISODE":   true,
	"AEA":          true,
	"HWSAPP":       true,
	"ADTLADDCOR":   true,
}

// TargetHintTables shortlists the source tables searched first for each
// target table. Order is the scan order.
var TargetHintTables = map[string][]string{
	"LOAD_PMI":                    {"PATDATA", "ADTLADDCOR"},
	"LOAD_PMIIDS":                 {"PATDATA"},
	"LOAD_PMIALIASES":             {"PATDATA"},
	"LOAD_PMIADDRS":               {"PATDATA", "ADTLADDCOR"},
	"LOAD_PMICONTACTS":            {"PATDATA"},
	"LOAD_PMIALLERGIES":           {"PATDATA"},
	"LOAD_PMISTAFFWARNINGS":       {"PATDATA"},
	"LOAD_PMIGPAUDIT":             {"PATDATA"},
	"LOAD_CASENOTELOCS":           {"PATDATA"},
	"LOAD_PMICASENOTEHISTORY":     {"PATDATA"},
	"LOAD_RTT_PATHWAYS":           {"OPREFERRAL", "WLCURRENT", "WLENTRY"},
	"LOAD_REFERRALS":              {"OPREFERRAL", "OPA", "WLCURRENT"},
	"LOAD_RTT_PERIODS":            {"OPREFERRAL", "WLCURRENT", "WLENTRY"},
	"LOAD_RTT_EVENTS":             {"OPREFERRAL", "WLCURRENT", "WLENTRY", "WLACTIVITY"},
	"LOAD_OPDWAITLIST":            {"OPA", "OPREFERRAL", "WLCURRENT"},
	"LOAD_OPDWAITLISTDEF":         {"WLACTIVITY", "WLCURRENT"},
	"LOAD_OPD_APPOINTMENTS":       {"OPA", "OPREFERRAL"},
	"LOAD_OPD_CODING":             {"OPA", "FCEEXT"},
	"LOAD_CMTY_APPOINTMENTS":      {"CPSGREFERRAL", "HWSAPP", "OPA"},
	"LOAD_IWL_PROFILES":           {"WLCURRENT", "WLENTRY"},
	"LOAD_IWL":                    {"WLCURRENT", "WLENTRY"},
	"LOAD_IWL_DEFERRALS":          {"WLACTIVITY", "WLCURRENT"},
	"LOAD_IWL_TCIS":               {"WLACTIVITY", "WLCURRENT"},
	"LOAD_ADT_ADMISSIONS":         {"ADMITDISCH", "WLCURRENT", "WLENTRY"},
	"LOAD_ADT_EPISODES":           {"FCEEXT", "ADMITDISCH", "SMREPISODE"},
	"LOAD_ADT_WARDSTAYS":          {"ADMITDISCH", "FCEEXT"},
	"LOAD_ADT_CODING":             {"FCEEXT", "OPA"},
	"LOAD_MH_DETENTION_MASTER":    {"SMREPISODE", "CPSGREFERRAL"},
	"LOAD_MH_DETENTION_TRANSFERS": {"SMREPISODE"},
	"LOAD_MH_CPA_MASTER":          {"SMREPISODE"},
	"LOAD_MH_CPA_HISTORY":         {"SMREPISODE"},
	"LOAD_OPD_ARCHIVE":            {"OPA", "OPREFERRAL"},
	"LOAD_ADT_ARCHIVE":            {"ADMITDISCH", "FCEEXT"},
	"LOAD_DETENTION_ARCHIVE":      {"SMREPISODE"},
	"LOAD_CPA_ARCHIVE":            {"SMREPISODE"},
}
