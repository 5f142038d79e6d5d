package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metadomain "github.com/vfg2006/campaign-manager-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
)

func TestMajorStringToCents(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int64
		wantErr  bool
	}{
		{name: "Valor com duas casas", value: "123.45", expected: 12345},
		{name: "Valor com uma casa", value: "10.5", expected: 1050},
		{name: "Valor inteiro", value: "42", expected: 4200},
		{name: "Zero", value: "0", expected: 0},
		{name: "Centavos apenas", value: "0.07", expected: 7},
		{name: "Vazio vale zero", value: "", expected: 0},
		{name: "Negativo", value: "-3.21", expected: -321},
		{name: "Três casas decimais é inválido", value: "1.234", wantErr: true},
		{name: "Texto é inválido", value: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cents, err := MajorStringToCents(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, cents)
		})
	}
}

// Converter para unidades maiores e de volta deve devolver o valor exato,
// sem perda por ponto flutuante.
func TestConversaoMonetariaIdaEVolta(t *testing.T) {
	values := []int64{0, 1, 7, 99, 100, 101, 12345, 999999, 1000000, 123456789}

	for _, cents := range values {
		major := CentsToMajorString(cents)

		back, err := MajorStringToCents(major)
		require.NoError(t, err, "valor %d (%s)", cents, major)
		assert.Equal(t, cents, back, "valor %d (%s)", cents, major)
	}
}

func TestCentsToMajorString(t *testing.T) {
	assert.Equal(t, "123.45", CentsToMajorString(12345))
	assert.Equal(t, "0.05", CentsToMajorString(5))
	assert.Equal(t, "0.00", CentsToMajorString(0))
	assert.Equal(t, "-3.21", CentsToMajorString(-321))
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name            string
		status          string
		effectiveStatus string
		expected        domain.EntityStatus
		known           bool
	}{
		{name: "Ativo", status: "ACTIVE", expected: domain.EntityStatusActive, known: true},
		{name: "Pausado", status: "PAUSED", expected: domain.EntityStatusPaused, known: true},
		{name: "Pausado pela campanha", status: "ACTIVE", effectiveStatus: "CAMPAIGN_PAUSED", expected: domain.EntityStatusPaused, known: true},
		{name: "Pausado pelo conjunto", status: "ACTIVE", effectiveStatus: "ADSET_PAUSED", expected: domain.EntityStatusPaused, known: true},
		{name: "Removido", status: "DELETED", expected: domain.EntityStatusDeleted, known: true},
		{name: "Arquivado", status: "ARCHIVED", expected: domain.EntityStatusArchived, known: true},
		{name: "Minúsculas são aceitas", status: "active", expected: domain.EntityStatusActive, known: true},
		{name: "Desconhecido cai em rascunho", status: "IN_PROCESS", expected: domain.EntityStatusDraft, known: false},
		{name: "Vazio cai em rascunho", status: "", expected: domain.EntityStatusDraft, known: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, known := NormalizeStatus(tt.status, tt.effectiveStatus)
			assert.Equal(t, tt.expected, status)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestCampaignFromRemote(t *testing.T) {
	remote := metadomain.Campaign{
		ID:          "120210000001",
		Name:        "Campanha Verão",
		Status:      "ACTIVE",
		Objective:   "CONVERSIONS",
		DailyBudget: "10000",
		StartTime:   "2026-08-01T00:00:00-0300",
	}

	campaign, known, err := CampaignFromRemote("conn-1", remote)
	require.NoError(t, err)
	assert.True(t, known)

	assert.Equal(t, "conn-1", campaign.ConnectionID)
	assert.Equal(t, "120210000001", campaign.RemoteID)
	assert.Equal(t, "Campanha Verão", campaign.Name)
	assert.Equal(t, domain.EntityStatusActive, campaign.Status)

	require.NotNil(t, campaign.DailyBudgetCents)
	assert.Equal(t, int64(10000), *campaign.DailyBudgetCents)
	assert.Nil(t, campaign.LifetimeBudgetCents)

	require.NotNil(t, campaign.StartTime)
	assert.Equal(t, 2026, campaign.StartTime.Year())
}

func TestCampaignFromRemote_OrcamentoInvalido(t *testing.T) {
	remote := metadomain.Campaign{
		ID:          "120210000001",
		Name:        "Campanha",
		Status:      "ACTIVE",
		DailyBudget: "dez mil",
	}

	_, _, err := CampaignFromRemote("conn-1", remote)
	assert.Error(t, err)
}

func TestTargetingIdaEVolta(t *testing.T) {
	original := &domain.Targeting{
		Countries:       []string{"BR", "PT"},
		AgeMin:          18,
		AgeMax:          54,
		Genders:         []string{"male", "female"},
		Interests:       []domain.Interest{{ID: "6003139266461", Name: "Futebol"}},
		CustomAudiences: []string{"23851234567890"},
	}

	remote := TargetingToRemote(original)
	require.NotNil(t, remote)
	require.NotNil(t, remote.GeoLocations)
	assert.Equal(t, []string{"BR", "PT"}, remote.GeoLocations.Countries)
	assert.Equal(t, []int{1, 2}, remote.Genders)

	back := TargetingFromRemote(remote)
	require.NotNil(t, back)
	assert.Equal(t, original.Countries, back.Countries)
	assert.Equal(t, original.AgeMin, back.AgeMin)
	assert.Equal(t, original.AgeMax, back.AgeMax)
	assert.Equal(t, original.Genders, back.Genders)
	assert.Equal(t, original.Interests, back.Interests)
	assert.Equal(t, original.CustomAudiences, back.CustomAudiences)
}

func TestTargetingToRemote_VazioViraNil(t *testing.T) {
	assert.Nil(t, TargetingToRemote(nil))
	assert.Nil(t, TargetingToRemote(&domain.Targeting{}))
}

func TestAdSetToParams(t *testing.T) {
	daily := int64(5000)
	adSet := &domain.AdSet{
		Name:             "Conjunto Remarketing",
		Status:           domain.EntityStatusActive,
		RemoteCampaignID: "120210000001",
		DailyBudgetCents: &daily,
		OptimizationGoal: "OFFSITE_CONVERSIONS",
		BillingEvent:     "IMPRESSIONS",
		Targeting: &domain.Targeting{
			Countries: []string{"BR"},
			AgeMin:    18,
			AgeMax:    65,
		},
	}

	params, err := AdSetToParams(adSet)
	require.NoError(t, err)

	assert.Equal(t, "Conjunto Remarketing", params.Get("name"))
	assert.Equal(t, "ACTIVE", params.Get("status"))
	assert.Equal(t, "120210000001", params.Get("campaign_id"))
	assert.Equal(t, "5000", params.Get("daily_budget"))
	assert.Contains(t, params.Get("targeting"), `"countries":["BR"]`)
}

func TestAdToParams(t *testing.T) {
	ad := &domain.Ad{
		Name:          "Anúncio Principal",
		Status:        domain.EntityStatusPaused,
		RemoteAdSetID: "120210000002",
		CreativeID:    "138000000001",
	}

	params, err := AdToParams(ad)
	require.NoError(t, err)

	assert.Equal(t, "Anúncio Principal", params.Get("name"))
	assert.Equal(t, "PAUSED", params.Get("status"))
	assert.Equal(t, "120210000002", params.Get("adset_id"))
	assert.JSONEq(t, `{"id":"138000000001"}`, params.Get("creative"))
}

func TestCampaignToParams_DeclaraCategoriasEspeciais(t *testing.T) {
	campaign := &domain.Campaign{
		Name:      "Campanha",
		Status:    domain.EntityStatusActive,
		Objective: "CONVERSIONS",
	}

	params := CampaignToParams(campaign)
	assert.Equal(t, "[]", params.Get("special_ad_categories"))
}

func TestSnapshotFromInsight(t *testing.T) {
	insight := metadomain.Insight{
		DateStart:   "2026-08-20",
		DateStop:    "2026-08-20",
		Impressions: "1500",
		Clicks:      "37",
		Spend:       "123.45",
		Actions: []metadomain.Action{
			{ActionType: "purchase", Value: "3"},
			{ActionType: "link_click", Value: "37"},
			{ActionType: "lead", Value: "2"},
		},
		ActionValues: []metadomain.Action{
			{ActionType: "purchase", Value: "250.00"},
		},
	}

	snapshot, err := SnapshotFromInsight("conn-1", domain.LevelAd, "ad-1", insight)
	require.NoError(t, err)

	assert.Equal(t, "conn-1", snapshot.ConnectionID)
	assert.Equal(t, domain.LevelAd, snapshot.EntityLevel)
	assert.Equal(t, "ad-1", snapshot.EntityID)
	assert.Equal(t, "2026-08-20", snapshot.Date.Format("2006-01-02"))
	assert.Equal(t, int64(1500), snapshot.Impressions)
	assert.Equal(t, int64(37), snapshot.Clicks)
	assert.Equal(t, int64(12345), snapshot.SpendCents)

	// purchase e lead contam como conversão; link_click não
	assert.Equal(t, float64(5), snapshot.Conversions)
	assert.Equal(t, int64(25000), snapshot.RevenueCents)
}

func TestSnapshotFromInsight_AcaoMalformadaEhIgnorada(t *testing.T) {
	insight := metadomain.Insight{
		DateStart:   "2026-08-20",
		Impressions: "100",
		Clicks:      "10",
		Spend:       "10.00",
		Actions: []metadomain.Action{
			{ActionType: "purchase", Value: "n/a"},
			{ActionType: "purchase", Value: "2"},
		},
	}

	snapshot, err := SnapshotFromInsight("conn-1", domain.LevelAd, "ad-1", insight)
	require.NoError(t, err)

	assert.Equal(t, float64(2), snapshot.Conversions)
}

func TestSnapshotFromInsight_DataInvalida(t *testing.T) {
	insight := metadomain.Insight{
		DateStart: "20/08/2026",
		Spend:     "1.00",
	}

	_, err := SnapshotFromInsight("conn-1", domain.LevelAd, "ad-1", insight)
	assert.Error(t, err)
}
