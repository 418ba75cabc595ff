package ledger

// canonicalLabels consolidates specification labels that changed across
// fiscal years. Keys are the deprecated labels as published; values are the
// current canonical labels. Applied as a total replace after concatenation;
// unmapped labels pass through unchanged.
var canonicalLabels = map[string]string{
	"RECEITA CORRENTE LÍQUIDA (I-II)": "RECEITA CORRENTE LÍQUIDA (III) = (I - II)",
	"Outras receitas tributárias":     "Outros Impostos, Taxas e Contribuições de Melhoria",
	"Receita tributária":              "Impostos, Taxas e Contribuições de Melhoria",
}

// CanonicalLabel maps a specification label to its canonical form.
func CanonicalLabel(spec string) string {
	if canonical, ok := canonicalLabels[spec]; ok {
		return canonical
	}
	return spec
}

// CanonicalLabels returns a copy of the consolidation table, for display on
// data-source pages.
func CanonicalLabels() map[string]string {
	out := make(map[string]string, len(canonicalLabels))
	for k, v := range canonicalLabels {
		out[k] = v
	}
	return out
}

// CurrentRevenueLabel is the aggregate current-revenue specification.
const CurrentRevenueLabel = "RECEITAS CORRENTES (I)"

// TaxLabels are the municipality's own tax revenue specifications.
var TaxLabels = []string{
	"IPTU",
	"ISS",
	"ITBI",
	"IRRF",
	"Outros Impostos, Taxas e Contribuições de Melhoria",
}

// TransferLabels are the constitutional and legal transfer specifications.
var TransferLabels = []string{
	"Cota parte do FPM",
	"Cota parte do ICMS",
	"Cota parte do IPVA",
	"Cota parte do ITR",
	"Transferências da LC 87/1996",
	"Transferências da LC 61/1989",
	"Transferências do FUNDEB",
	"Outras transferências correntes",
}

// AnnexLabels are the LRF annex aggregates (net current revenue and its
// components).
var AnnexLabels = []string{
	"RECEITAS CORRENTES (I)",
	"DEDUÇÕES (II)",
	"RECEITA CORRENTE LÍQUIDA (III) = (I - II)",
	"RECEITA CORRENTE LÍQUIDA AJUSTADA PARA CÁLCULO DOS LIMITES DE ENDIVIDAMENTO (V) = (III - IV)",
	"RECEITA CORRENTE LÍQUIDA AJUSTADA PARA CÁLCULO DOS LIMITES DA DESPESA COM PESSOAL (VIII) = (V - VI - VII)",
}

// ForecastableLabels lists every specification the forecast pages accept:
// own taxes, the current-revenue aggregate, and transfers.
func ForecastableLabels() []string {
	out := make([]string, 0, len(TaxLabels)+1+len(TransferLabels))
	out = append(out, TaxLabels...)
	out = append(out, CurrentRevenueLabel)
	out = append(out, TransferLabels...)
	return out
}

// IsForecastable reports whether spec is in the forecastable set.
func IsForecastable(spec string) bool {
	for _, l := range ForecastableLabels() {
		if l == spec {
			return true
		}
	}
	return false
}
