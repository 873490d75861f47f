package domain

import "strings"

// ReferenceTargetTables are mastered from PAS setup data rather than
// transactional extracts.
var ReferenceTargetTables = map[string]bool{
	"LOAD_STAFF":        true,
	"LOAD_USERS":        true,
	"LOAD_SITES":        true,
	"LOAD_IWL_PROFILES": true,
}

// SystemFields exist on every LOAD_ table and are generated by the ETL.
var SystemFields = map[string]bool{
	"record_number":      true,
	"system_code":        true,
	"external_system_id": true,
}

// PhantomFields are artefacts of the PDF guide conversion, not business fields.
var PhantomFields = map[string]bool{
	"must":          true,
	"indicates":     true,
	"ged":           true,
	"ge_date":       true,
	"ge_toe":        true,
	"ge_typee":      true,
	"appointments":  true,
	"acters":        true,
	"before":        true,
	"ranges":        true,
	"table":         true,
	"ge_status":     true,
	"ge_methode":    true,
	"ge_specialty":  true,
	"ge_consultant": true,
}

// IsPhantomField matches case-insensitively.
func IsPhantomField(field string) bool {
	return PhantomFields[strings.ToLower(field)]
}

// Relationship is a parent/child key pair between two target tables.
type Relationship struct {
	ChildTable  string
	ChildField  string
	ParentTable string
	ParentField string
}

// TargetRelationships are the foreign-key chains of the LOAD_ schema.
var TargetRelationships = []Relationship{
	{"LOAD_PMIIDS", "loadpmi_record_number", "LOAD_PMI", "record_number"},
	{"LOAD_RTT_PERIODS", "loadrttpwy_record_number", "LOAD_RTT_PATHWAYS", "record_number"},
	{"LOAD_RTT_EVENTS", "loadrttprd_record_number", "LOAD_RTT_PERIODS", "record_number"},
	{"LOAD_OPDWAITLIST", "loadrttprd_record_number", "LOAD_RTT_PERIODS", "record_number"},
	{"LOAD_OPD_APPOINTMENTS", "loadowl_record_number", "LOAD_OPDWAITLIST", "record_number"},
	{"LOAD_ADT_ADMISSIONS", "loadiwl_record_number", "LOAD_IWL", "record_number"},
	{"LOAD_ADT_EPISODES", "adt_adm_record_number", "LOAD_ADT_ADMISSIONS", "record_number"},
	{"LOAD_ADT_WARDSTAYS", "adt_eps_record_number", "LOAD_ADT_EPISODES", "record_number"},
}
