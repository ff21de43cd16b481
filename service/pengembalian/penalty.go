package pengembalian

import (
	"fmt"
	"strings"
	"time"
)

// PenaltyPolicy holds the shop's penalty knobs. All amounts are whole
// rupiah; no floating point anywhere in the money path.
type PenaltyPolicy struct {
	LateFeePerDay int64 // per day per unit
	DamagePercent int64 // percent of cost basis per damaged unit
}

type KondisiPenalty struct {
	Kondisi   string `json:"kondisi"`
	Jumlah    int64  `json:"jumlah"`
	Hilang    bool   `json:"hilang"`
	Denda     int64  `json:"denda"`
	ModalAwal int64  `json:"modal_awal"`
	Alasan    string `json:"alasan"`
}

type ItemPenalty struct {
	ItemID     int64            `json:"item_id"`
	ProdukNama string           `json:"produk_nama"`
	LateDays   int64            `json:"late_days"`
	Denda      int64            `json:"denda"`
	Alasan     string           `json:"alasan"`
	Kondisi    []KondisiPenalty `json:"kondisi"`
}

type PenaltyBreakdown struct {
	TotalLateDays int64         `json:"total_late_days"`
	TotalDenda    int64         `json:"total_denda"`
	Summary       string        `json:"summary"`
	Items         []ItemPenalty `json:"items"`
}

// LateDays returns the number of calendar days the actual return date
// lies after the expected one, zero when on time or early.
func LateDays(expected, actual time.Time) int64 {
	e := truncateDay(expected)
	a := truncateDay(actual)
	if !a.After(e) {
		return 0
	}
	return int64(a.Sub(e) / (24 * time.Hour))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeItemPenalty prices one normalized item. Two independent
// sources can hit the same split: the late fee (rate × late days ×
// split quantity) and the condition penalty (full cost basis per lost
// unit, a policy fraction per damaged unit). The cost basis per split
// is the request override when present, the product's modal awal
// otherwise, and is captured on the split record.
func ComputeItemPenalty(ni NormalizedItem, lateDays int64, policy PenaltyPolicy) ItemPenalty {
	out := ItemPenalty{
		ItemID:     ni.Item.ID,
		ProdukNama: ni.Item.ProdukNama,
		LateDays:   lateDays,
	}

	var reasons []string
	for _, k := range ni.Kondisi {
		modal := ni.Item.ModalAwal
		if k.ModalAwal != nil {
			modal = *k.ModalAwal
		}

		kp := KondisiPenalty{
			Kondisi:   k.Kondisi,
			Jumlah:    k.Jumlah,
			Hilang:    k.Hilang,
			ModalAwal: modal,
		}

		var parts []string
		if lateDays > 0 {
			late := policy.LateFeePerDay * lateDays * k.Jumlah
			kp.Denda += late
			parts = append(parts, fmt.Sprintf("terlambat %d hari (Rp%d)", lateDays, late))
		}
		switch {
		case k.Hilang:
			lostFee := modal * k.Jumlah
			kp.Denda += lostFee
			parts = append(parts, fmt.Sprintf("hilang %d unit x modal Rp%d", k.Jumlah, modal))
		case IsDamaged(k.Kondisi):
			perUnit := modal * policy.DamagePercent / 100
			dmg := perUnit * k.Jumlah
			kp.Denda += dmg
			parts = append(parts, fmt.Sprintf("rusak %d unit x Rp%d (%d%% modal)", k.Jumlah, perUnit, policy.DamagePercent))
		}
		if len(parts) == 0 {
			kp.Alasan = "tidak ada denda"
		} else {
			kp.Alasan = strings.Join(parts, ", ")
			reasons = append(reasons, kp.Alasan)
		}

		out.Denda += kp.Denda
		out.Kondisi = append(out.Kondisi, kp)
	}

	if len(reasons) == 0 {
		out.Alasan = "tidak ada denda"
	} else {
		out.Alasan = strings.Join(reasons, "; ")
	}
	return out
}

// Aggregate rolls per-item penalties up to the transaction level.
func Aggregate(items []ItemPenalty) PenaltyBreakdown {
	bd := PenaltyBreakdown{Items: items}
	for _, ip := range items {
		bd.TotalDenda += ip.Denda
		if ip.LateDays > bd.TotalLateDays {
			bd.TotalLateDays = ip.LateDays
		}
	}
	if bd.TotalDenda == 0 {
		bd.Summary = "pengembalian tanpa denda"
	} else {
		bd.Summary = fmt.Sprintf("total denda Rp%d untuk %d item", bd.TotalDenda, len(items))
	}
	return bd
}
