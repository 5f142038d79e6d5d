package domain

// Targeting descreve a segmentação de um conjunto de anúncios de forma
// neutra em relação à plataforma. O mapper converte para o formato
// esperado pela API de anúncios.
type Targeting struct {
	Countries       []string   `json:"countries,omitempty"`
	AgeMin          int        `json:"age_min,omitempty"`
	AgeMax          int        `json:"age_max,omitempty"`
	Genders         []string   `json:"genders,omitempty"`
	Interests       []Interest `json:"interests,omitempty"`
	CustomAudiences []string   `json:"custom_audiences,omitempty"`
}

type Interest struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func (t *Targeting) IsEmpty() bool {
	if t == nil {
		return true
	}

	return len(t.Countries) == 0 &&
		t.AgeMin == 0 &&
		t.AgeMax == 0 &&
		len(t.Genders) == 0 &&
		len(t.Interests) == 0 &&
		len(t.CustomAudiences) == 0
}
