package metadomain

import "encoding/json"

type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

type Paging struct {
	Cursors  Cursors `json:"cursors"`
	Next     string  `json:"next,omitempty"`
	Previous string  `json:"previous,omitempty"`
}

// Page é o envelope de listagem da API: um array data e, quando há mais
// resultados, a URL absoluta da próxima página em paging.next.
type Page struct {
	Data   []json.RawMessage `json:"data"`
	Paging Paging            `json:"paging"`
}

func (p *Page) HasNext() bool {
	return p != nil && p.Paging.Next != ""
}
