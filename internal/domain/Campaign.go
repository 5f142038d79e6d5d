package domain

import (
	"fmt"
	"strings"
	"time"
)

type EntityStatus string

const (
	EntityStatusActive   EntityStatus = "ACTIVE"
	EntityStatusPaused   EntityStatus = "PAUSED"
	EntityStatusDeleted  EntityStatus = "DELETED"
	EntityStatusArchived EntityStatus = "ARCHIVED"

	// EntityStatusDraft só existe localmente: é o destino de status
	// remotos não reconhecidos. A plataforma nunca devolve nem aceita
	// esse valor.
	EntityStatusDraft EntityStatus = "DRAFT"
)

// TempIDPrefix marca entidades criadas localmente que ainda não existem
// na plataforma. O push de criação troca o id temporário pelo id remoto.
const TempIDPrefix = "tmp_"

func IsTemporaryID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

type Campaign struct {
	ID                  string       `json:"id"`
	ConnectionID        string       `json:"connection_id"`
	RemoteID            string       `json:"remote_id"`
	Name                string       `json:"name"`
	Status              EntityStatus `json:"status"`
	Objective           string       `json:"objective"`
	DailyBudgetCents    *int64       `json:"daily_budget_cents,omitempty"`
	LifetimeBudgetCents *int64       `json:"lifetime_budget_cents,omitempty"`
	StartTime           *time.Time   `json:"start_time,omitempty"`
	EndTime             *time.Time   `json:"end_time,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

type AdSet struct {
	ID                  string       `json:"id"`
	ConnectionID        string       `json:"connection_id"`
	CampaignID          string       `json:"campaign_id"`
	RemoteID            string       `json:"remote_id"`
	RemoteCampaignID    string       `json:"remote_campaign_id"`
	Name                string       `json:"name"`
	Status              EntityStatus `json:"status"`
	DailyBudgetCents    *int64       `json:"daily_budget_cents,omitempty"`
	LifetimeBudgetCents *int64       `json:"lifetime_budget_cents,omitempty"`
	OptimizationGoal    string       `json:"optimization_goal,omitempty"`
	BillingEvent        string       `json:"billing_event,omitempty"`
	Targeting           *Targeting   `json:"targeting,omitempty"`
	StartTime           *time.Time   `json:"start_time,omitempty"`
	EndTime             *time.Time   `json:"end_time,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

type Ad struct {
	ID            string       `json:"id"`
	ConnectionID  string       `json:"connection_id"`
	AdSetID       string       `json:"ad_set_id"`
	RemoteID      string       `json:"remote_id"`
	RemoteAdSetID string       `json:"remote_ad_set_id"`
	Name          string       `json:"name"`
	Status        EntityStatus `json:"status"`
	CreativeID    string       `json:"creative_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type EntityLevel string

const (
	LevelCampaign EntityLevel = "CAMPAIGN"
	LevelAdSet    EntityLevel = "AD_SET"
	LevelAd       EntityLevel = "AD"
)

// EntityRef carrega exatamente uma entidade, identificada pelo Level.
// Quem consome o ref decide por switch exaustivo sobre o nível; um ref
// sem a entidade correspondente é um erro de programação, não de dados.
type EntityRef struct {
	Level    EntityLevel
	Campaign *Campaign
	AdSet    *AdSet
	Ad       *Ad
}

func CampaignRef(c *Campaign) EntityRef {
	return EntityRef{Level: LevelCampaign, Campaign: c}
}

func AdSetRef(a *AdSet) EntityRef {
	return EntityRef{Level: LevelAdSet, AdSet: a}
}

func AdRef(a *Ad) EntityRef {
	return EntityRef{Level: LevelAd, Ad: a}
}

func (r EntityRef) Validate() error {
	switch r.Level {
	case LevelCampaign:
		if r.Campaign == nil {
			return fmt.Errorf("entity ref de nível %s sem campanha", r.Level)
		}
	case LevelAdSet:
		if r.AdSet == nil {
			return fmt.Errorf("entity ref de nível %s sem conjunto de anúncios", r.Level)
		}
	case LevelAd:
		if r.Ad == nil {
			return fmt.Errorf("entity ref de nível %s sem anúncio", r.Level)
		}
	default:
		return fmt.Errorf("nível de entidade desconhecido: %q", r.Level)
	}

	return nil
}

// RemoteID devolve o id remoto da entidade embutida, vazio quando o ref é inválido.
func (r EntityRef) RemoteID() string {
	switch r.Level {
	case LevelCampaign:
		if r.Campaign != nil {
			return r.Campaign.RemoteID
		}
	case LevelAdSet:
		if r.AdSet != nil {
			return r.AdSet.RemoteID
		}
	case LevelAd:
		if r.Ad != nil {
			return r.Ad.RemoteID
		}
	}

	return ""
}

func (r EntityRef) ConnectionID() string {
	switch r.Level {
	case LevelCampaign:
		if r.Campaign != nil {
			return r.Campaign.ConnectionID
		}
	case LevelAdSet:
		if r.AdSet != nil {
			return r.AdSet.ConnectionID
		}
	case LevelAd:
		if r.Ad != nil {
			return r.Ad.ConnectionID
		}
	}

	return ""
}
