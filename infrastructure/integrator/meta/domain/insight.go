package metadomain

// Action é um item do array de ações dos insights: o tipo do evento e o
// valor acumulado, sempre como string.
type Action struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// Insight é a linha diária de métricas devolvida pela API para uma
// entidade. Contadores chegam como strings; spend em unidades maiores
// com casas decimais.
type Insight struct {
	DateStart    string   `json:"date_start"`
	DateStop     string   `json:"date_stop"`
	Impressions  string   `json:"impressions"`
	Clicks       string   `json:"clicks"`
	Spend        string   `json:"spend"`
	Actions      []Action `json:"actions,omitempty"`
	ActionValues []Action `json:"action_values,omitempty"`
}

// ConversionActionTypes são os tipos de ação contados como conversão.
var ConversionActionTypes = map[string]bool{
	"offsite_conversion.fb_pixel_purchase": true,
	"omni_purchase":                        true,
	"purchase":                             true,
	"onsite_conversion.purchase":           true,
	"lead":                                 true,
	"offsite_conversion.fb_pixel_lead":     true,
}

// RevenueActionTypes são os tipos de ação cujo action_value entra como
// receita atribuída.
var RevenueActionTypes = map[string]bool{
	"offsite_conversion.fb_pixel_purchase": true,
	"omni_purchase":                        true,
	"purchase":                             true,
	"onsite_conversion.purchase":           true,
}
