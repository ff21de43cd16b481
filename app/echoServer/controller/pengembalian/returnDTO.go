package pengembalian

import (
	"fmt"
	"time"

	ps "github.com/EviewNicks/rental-baju-sub003/service/pengembalian"
)

// KondisiReq is one condition split of an item's return.
type KondisiReq struct {
	KondisiAkhir  string `json:"kondisiAkhir" validate:"required,min=5,max=500"`
	JumlahKembali int64  `json:"jumlahKembali" validate:"gte=0,lte=999"`
	ModalAwal     *int64 `json:"modalAwal,omitempty" validate:"omitempty,gte=0"`
}

// ItemReq accepts both the unified shape (conditions list) and the
// legacy single-condition shape (kondisiAkhir/jumlahKembali inline),
// which is converted to one split before it reaches the service.
type ItemReq struct {
	ItemID     int64        `json:"itemId" validate:"required,gt=0"`
	Conditions []KondisiReq `json:"conditions,omitempty" validate:"omitempty,max=10,dive"`

	KondisiAkhir  *string `json:"kondisiAkhir,omitempty"`
	JumlahKembali *int64  `json:"jumlahKembali,omitempty"`
}

// ReturnReq represents the return payload
// swagger:model ReturnReq
type ReturnReq struct {
	Items      []ItemReq `json:"items" validate:"required,min=1,max=50,dive"`
	Catatan    string    `json:"catatan,omitempty" validate:"max=500"`
	TglKembali string    `json:"tglKembali,omitempty"`
}

func (r ReturnReq) toService() (ps.ReturnRequest, error) {
	out := ps.ReturnRequest{Catatan: r.Catatan}
	if r.TglKembali != "" {
		t, err := time.Parse(time.RFC3339, r.TglKembali)
		if err != nil {
			return out, fmt.Errorf("tglKembali: %w", err)
		}
		out.TglKembali = &t
	}
	for _, it := range r.Items {
		in := ps.ItemInput{ItemID: it.ItemID}
		switch {
		case len(it.Conditions) > 0:
			for _, k := range it.Conditions {
				in.Kondisi = append(in.Kondisi, ps.KondisiInput{
					KondisiAkhir:  k.KondisiAkhir,
					JumlahKembali: k.JumlahKembali,
					ModalAwal:     k.ModalAwal,
				})
			}
		case it.KondisiAkhir != nil && it.JumlahKembali != nil:
			in.Kondisi = append(in.Kondisi, ps.KondisiInput{
				KondisiAkhir:  *it.KondisiAkhir,
				JumlahKembali: *it.JumlahKembali,
			})
		}
		out.Items = append(out.Items, in)
	}
	return out, nil
}
