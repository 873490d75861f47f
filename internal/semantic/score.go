package semantic

import "strings"

// Bonuses added on top of token-set Jaccard similarity.
const (
	ConcatBonus    = 0.35
	ExactNameBonus = 0.45
	AnchorBonus    = 0.10
	TemporalBonus  = 0.05
)

var anchorTokens = []string{"nhs", "internalpatientnumber", "dateofbirth", "episodenumber"}

// Score compares a target field name with a source field name.
func Score(targetField, sourceField string) float64 {
	return ScoreTokens(targetField, Tokenize(targetField), sourceField, Tokenize(sourceField))
}

// ScoreTokens is Score with pre-computed token sequences. The result is in
// [0, 1]; an empty side scores 0.
func ScoreTokens(targetField string, targetTokens []string, sourceField string, sourceTokens []string) float64 {
	if len(targetTokens) == 0 || len(sourceTokens) == 0 {
		return 0
	}

	tset := toSet(targetTokens)
	sset := toSet(sourceTokens)

	inter := 0
	for t := range tset {
		if sset[t] {
			inter++
		}
	}
	union := len(tset) + len(sset) - inter
	jaccard := float64(inter) / float64(union)

	bonus := 0.0
	if strings.Join(targetTokens, "") == strings.Join(sourceTokens, "") {
		bonus += ConcatBonus
	}
	if strings.EqualFold(targetField, sourceField) {
		bonus += ExactNameBonus
	}
	for _, a := range anchorTokens {
		if tset[a] && sset[a] {
			bonus += AnchorBonus
			break
		}
	}
	if (tset["date"] && sset["date"]) || (tset["datetime"] && sset["datetime"]) {
		bonus += TemporalBonus
	}

	return capScore(jaccard + bonus)
}

func capScore(s float64) float64 {
	if s > 1.0 {
		return 1.0
	}
	return s
}

func toSet(tokens []string) map[string]bool {
	m := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		m[t] = true
	}
	return m
}
