package domain

// SyncResult contabiliza o resultado de um pull de entidades.
type SyncResult struct {
	Campaigns  int   `json:"campaigns"`
	AdSets     int   `json:"ad_sets"`
	Ads        int   `json:"ads"`
	Skipped    int   `json:"skipped"`
	DurationMs int64 `json:"duration_ms"`
}

func (r *SyncResult) Total() int {
	if r == nil {
		return 0
	}

	return r.Campaigns + r.AdSets + r.Ads
}

// PerformanceSyncResult contabiliza o resultado de um pull de métricas,
// com os snapshots abertos por nível de entidade.
type PerformanceSyncResult struct {
	Entities       int `json:"entities"`
	Snapshots      int `json:"snapshots"`
	AdSetSnapshots int `json:"ad_set_snapshots"`
	AdSnapshots    int `json:"ad_snapshots"`
	Skipped        int `json:"skipped"`
	Errors         int `json:"errors"`
}

// PushResult devolve o id remoto afetado por um push e se ele foi criado
// agora ou apenas atualizado.
type PushResult struct {
	RemoteID string `json:"remote_id"`
	Created  bool   `json:"created"`
}
