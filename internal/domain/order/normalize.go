package order

import "strings"

// Normalization maps raw values from legacy exports onto the canonical
// enums. Unrecognized input coerces to a safe default instead of failing;
// the importer counts coercions so data-quality problems stay visible.

// NormalizePriority clamps to [1,4]. Only a missing field (nil) takes the
// default; a recorded 0 is an explicit value and clamps to the most urgent
// rank.
func NormalizePriority(p *int) int {
	if p == nil {
		return PriorityDefault
	}
	return ClampPriority(*p)
}

// ClampPriority clamps to [1,4] without the absent-value default. Used on
// direct API writes where 0 is a caller mistake, not a missing field.
func ClampPriority(p int) int {
	if p < PriorityMin {
		return PriorityMin
	}
	if p > PriorityMax {
		return PriorityMax
	}
	return p
}

var statusAliases = map[string]string{
	"pendente":  StatusPendente,
	"agendado":  StatusAgendado,
	"concluido": StatusConcluido,
	"concluído": StatusConcluido,
	"cancelado": StatusCancelado,
}

// NormalizeStatus folds case and the accented Concluído variant onto the
// canonical set; anything else maps to Pendente.
func NormalizeStatus(s string) string {
	if canonical, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return canonical
	}
	return StatusPendente
}

var patientTypeAliases = map[string]string{
	"ambulatorio": TypeAmbulatorio,
	"ambulatório": TypeAmbulatorio,
	"internado":   TypeInternado,
}

func NormalizePatientType(s string) string {
	if canonical, ok := patientTypeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return canonical
	}
	return TypeAmbulatorio
}

var sedationAliases = map[string]string{
	"com":          SedationCom,
	"com sedacao":  SedationCom,
	"com sedação":  SedationCom,
	"sem":          SedationSem,
	"sem sedacao":  SedationSem,
	"sem sedação":  SedationSem,
}

func NormalizeSedation(s string) string {
	if canonical, ok := sedationAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return canonical
	}
	return SedationSem
}
