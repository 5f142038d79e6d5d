package metadomain

// Campaign é a campanha tal como devolvida pela API da plataforma.
// Orçamentos chegam como strings em unidades menores da moeda.
type Campaign struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	EffectiveStatus string `json:"effective_status,omitempty"`
	Objective       string `json:"objective,omitempty"`
	DailyBudget     string `json:"daily_budget,omitempty"`
	LifetimeBudget  string `json:"lifetime_budget,omitempty"`
	StartTime       string `json:"start_time,omitempty"`
	StopTime        string `json:"stop_time,omitempty"`
	CreatedTime     string `json:"created_time,omitempty"`
	UpdatedTime     string `json:"updated_time,omitempty"`
}

type AdSet struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Status           string     `json:"status"`
	EffectiveStatus  string     `json:"effective_status,omitempty"`
	CampaignID       string     `json:"campaign_id"`
	DailyBudget      string     `json:"daily_budget,omitempty"`
	LifetimeBudget   string     `json:"lifetime_budget,omitempty"`
	OptimizationGoal string     `json:"optimization_goal,omitempty"`
	BillingEvent     string     `json:"billing_event,omitempty"`
	Targeting        *Targeting `json:"targeting,omitempty"`
	StartTime        string     `json:"start_time,omitempty"`
	EndTime          string     `json:"end_time,omitempty"`
}

type Ad struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	EffectiveStatus string    `json:"effective_status,omitempty"`
	AdSetID         string    `json:"adset_id"`
	CampaignID      string    `json:"campaign_id,omitempty"`
	Creative        *Creative `json:"creative,omitempty"`
}

type Creative struct {
	ID string `json:"id"`
}

// Targeting é o formato de segmentação aceito e devolvido pela plataforma.
type Targeting struct {
	GeoLocations    *GeoLocations    `json:"geo_locations,omitempty"`
	AgeMin          int              `json:"age_min,omitempty"`
	AgeMax          int              `json:"age_max,omitempty"`
	Genders         []int            `json:"genders,omitempty"`
	Interests       []TargetingTerm  `json:"interests,omitempty"`
	CustomAudiences []AudienceHandle `json:"custom_audiences,omitempty"`
}

type GeoLocations struct {
	Countries []string `json:"countries,omitempty"`
}

type TargetingTerm struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type AudienceHandle struct {
	ID string `json:"id"`
}

// CreateResult é a resposta dos POSTs de criação: apenas o id remoto novo.
type CreateResult struct {
	ID string `json:"id"`
}

// SuccessResult é a resposta dos POSTs de atualização e dos DELETEs.
type SuccessResult struct {
	Success bool `json:"success"`
}
