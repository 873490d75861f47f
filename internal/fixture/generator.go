// Package fixture writes synthetic PAS source extracts for rehearsal runs.
package fixture

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"

	"nhs-dm-tool/internal/catalog"
	"nhs-dm-tool/internal/csvio"
	"nhs-dm-tool/internal/quality"
	"nhs-dm-tool/internal/semantic"
)

// PatientTable is the PAS master patient extract.
const PatientTable = "PATDATA"

var (
	eventStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	eventEnd   = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	dobStart   = time.Date(1930, 1, 1, 0, 0, 0, 0, time.UTC)
	dobEnd     = time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)
)

// Patient is one identity shared by every generated table.
type Patient struct {
	MRN      string
	NHS      string
	Title    string
	Forename string
	Surname  string
	DOB      string
	Sex      string
	Postcode string
	Address  string
	Phone    string
}

// Generator produces deterministic rows for a given seed. A zero seed draws
// a random one.
type Generator struct {
	Rows   int
	Logger zerolog.Logger

	faker    *gofakeit.Faker
	patients []Patient
}

// New builds the patient pool up front so every table draws from it.
func New(seed int64, rows int, logger zerolog.Logger) *Generator {
	if rows <= 0 {
		rows = 1
	}
	g := &Generator{Rows: rows, Logger: logger, faker: gofakeit.New(seed)}
	g.patients = make([]Patient, rows)
	for i := range g.patients {
		g.patients[i] = g.newPatient(i)
	}
	return g
}

// Patients exposes the identity pool.
func (g *Generator) Patients() []Patient {
	return g.patients
}

func (g *Generator) newPatient(i int) Patient {
	f := g.faker
	sex := f.RandomString(SexCodes)
	town := f.RandomString(Towns)
	return Patient{
		MRN:      fmt.Sprintf("M%07d", i+1),
		NHS:      g.nhsNumber(),
		Title:    f.RandomString(Titles[sex]),
		Forename: strings.ToUpper(f.FirstName()),
		Surname:  strings.ToUpper(f.LastName()),
		DOB:      f.DateRange(dobStart, dobEnd).Format("02/01/2006"),
		Sex:      sex,
		Postcode: g.postcode(),
		Address:  fmt.Sprintf("%d %s %s, %s", f.Number(1, 250), f.LastName(), f.RandomString(Streets), town),
		Phone:    f.Numerify("07#########"),
	}
}

func (g *Generator) nhsNumber() string {
	for {
		base := fmt.Sprintf("%09d", g.faker.Number(100000000, 999999999))
		if d, ok := quality.NHSCheckDigit(base); ok {
			return base + strconv.Itoa(d)
		}
	}
}

func (g *Generator) postcode() string {
	f := g.faker
	return fmt.Sprintf("%s %d%s", f.RandomString(OutwardCodes), f.Number(1, 9), strings.ToUpper(f.Lexify("??")))
}

func truncate(s string, size string) string {
	limit, err := strconv.Atoi(strings.TrimSpace(size))
	if err != nil || limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}

// Value renders one field for patient p.
func (g *Generator) Value(field catalog.SchemaField, p Patient) string {
	f := g.faker
	switch AnalyzeMeaning(field.FieldName, field.Description) {
	case MeaningMRN:
		return p.MRN
	case MeaningNHS:
		return p.NHS
	case MeaningDOB:
		return p.DOB
	case MeaningDate:
		return f.DateRange(eventStart, eventEnd).Format("20060102")
	case MeaningTime:
		return fmt.Sprintf("%02d:%02d", f.Number(8, 17), f.Number(0, 59))
	case MeaningPostcode:
		return p.Postcode
	case MeaningForename:
		return truncate(p.Forename, field.Size)
	case MeaningSurname:
		return truncate(p.Surname, field.Size)
	case MeaningTitle:
		return p.Title
	case MeaningSex:
		return p.Sex
	case MeaningEthnic:
		return f.RandomString(EthnicCodes)
	case MeaningConsultant:
		return f.RandomString(ConsultantCodes)
	case MeaningSpecialty:
		return f.RandomString(SpecialtyCodes)
	case MeaningWard:
		return f.RandomString(WardCodes)
	case MeaningMethod:
		return f.RandomString(MethodCodes)
	case MeaningPhone:
		return p.Phone
	case MeaningEmail:
		return truncate(strings.ToLower(p.Forename+"."+p.Surname)+"@example.nhs.uk", field.Size)
	case MeaningAddress:
		return truncate(p.Address, field.Size)
	case MeaningName:
		return truncate(p.Forename+" "+p.Surname, field.Size)
	case MeaningFlag:
		if f.Bool() {
			return "Y"
		}
		return "N"
	case MeaningDescription:
		return truncate(f.Sentence(5), field.Size)
	case MeaningCode:
		return truncate(strings.ToUpper(f.Lexify("???")), field.Size)
	case MeaningNumber:
		return truncate(f.Numerify("######"), field.Size)
	}
	return truncate(strings.ToUpper(f.LetterN(8)), field.Size)
}

// Table renders rows for one source table in catalog field order. PATDATA
// walks the pool so each MRN appears once; other tables sample it.
func (g *Generator) Table(table string, fields []catalog.SchemaField) (header []string, records [][]string) {
	for _, fl := range fields {
		header = append(header, fl.FieldName)
	}
	for i := 0; i < g.Rows; i++ {
		p := g.patients[i]
		if !strings.EqualFold(table, PatientTable) {
			p = g.patients[g.faker.Number(0, len(g.patients)-1)]
		}
		rec := make([]string, len(fields))
		for j, fl := range fields {
			rec[j] = g.Value(fl, p)
		}
		records = append(records, rec)
	}
	return header, records
}

// DefaultTables returns the priority tables present in the source catalog,
// PATDATA first.
func DefaultTables(cat *catalog.Catalog) []string {
	var out []string
	for _, t := range cat.Tables() {
		if semantic.PriorityTables[strings.ToUpper(t)] {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi := strings.EqualFold(out[i], PatientTable)
		pj := strings.EqualFold(out[j], PatientTable)
		if pi != pj {
			return pi
		}
		return out[i] < out[j]
	})
	return out
}

// Write generates each table into dir as TABLE.csv and returns the paths.
func (g *Generator) Write(dir string, cat *catalog.Catalog, tables []string) ([]string, error) {
	var paths []string
	for _, t := range tables {
		fields := cat.TableRows(t)
		if len(fields) == 0 {
			return paths, fmt.Errorf("table %s is not in the source catalog", t)
		}
		header, records := g.Table(t, fields)
		path := filepath.Join(dir, t+".csv")
		if err := csvio.WriteRecords(path, header, records); err != nil {
			return paths, err
		}
		g.Logger.Debug().Str("table", t).Int("rows", len(records)).Msg("Fixture written")
		paths = append(paths, path)
	}
	return paths, nil
}
